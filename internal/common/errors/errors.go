// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeListingNotFound ErrorCode = "LISTING_NOT_FOUND"
	ErrCodeInvalidListing  ErrorCode = "INVALID_LISTING"

	ErrCodeInvalidFilterFormat ErrorCode = "INVALID_FILTER_FORMAT"

	ErrCodeInquiryValidationFailed      ErrorCode = "INQUIRY_VALIDATION_FAILED"
	ErrCodeConsultationValidationFailed ErrorCode = "CONSULTATION_VALIDATION_FAILED"
	ErrCodeRequestNotFound              ErrorCode = "REQUEST_NOT_FOUND"
	ErrCodeInvalidStatus                ErrorCode = "INVALID_STATUS"

	ErrCodeDocumentStoreUnavailable ErrorCode = "DOCUMENT_STORE_UNAVAILABLE"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeSearchIndexFailed        ErrorCode = "SEARCH_INDEX_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeAINotConfigured    ErrorCode = "AI_NOT_CONFIGURED"
	ErrCodeAIGenerationFailed ErrorCode = "AI_GENERATION_FAILED"
	ErrCodeAITimeout          ErrorCode = "AI_TIMEOUT"
	ErrCodeInvalidPrompt      ErrorCode = "INVALID_PROMPT"

	ErrCodeAdminUnauthorized       ErrorCode = "ADMIN_UNAUTHORIZED"
	ErrCodeAuthProviderUnavailable ErrorCode = "AUTH_PROVIDER_UNAVAILABLE"

	ErrCodeEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeEngineRejected    ErrorCode = "WORKFLOW_ENGINE_REJECTED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// CodeOf extracts the error code from err, or "" when err carries none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewListingNotFoundError(id string) *StandardError {
	return newError(ErrCodeListingNotFound, "Listing not found", fmt.Sprintf("listingId: %s", id), false)
}

func NewInvalidListingError(details string) *StandardError {
	return newError(ErrCodeInvalidListing, "Listing data is invalid", details, false)
}

// NewInvalidFilterFormatError is returned when search filters cannot be decoded.
func NewInvalidFilterFormatError(details string) *StandardError {
	return newError(ErrCodeInvalidFilterFormat, "Invalid listing filter", details, false)
}

func NewInquiryValidationError(details string) *StandardError {
	return newError(ErrCodeInquiryValidationFailed, "Inquiry form validation failed", details, false)
}

func NewConsultationValidationError(details string) *StandardError {
	return newError(ErrCodeConsultationValidationFailed, "Consultation form validation failed", details, false)
}

func NewRequestNotFoundError(kind, id string) *StandardError {
	return newError(ErrCodeRequestNotFound, "Request not found", fmt.Sprintf("%s: %s", kind, id), false)
}

func NewInvalidStatusError(status string) *StandardError {
	return newError(ErrCodeInvalidStatus, "Unsupported status", fmt.Sprintf("status: %s", status), false)
}

// NewDocumentStoreUnavailableError creates a retryable storage error.
func NewDocumentStoreUnavailableError(err error) *StandardError {
	return newError(ErrCodeDocumentStoreUnavailable, "Document store unavailable", err.Error(), true)
}

func NewDatabaseInsertFailedError(collection string, err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Failed to write document",
		fmt.Sprintf("collection: %s, error: %s", collection, err.Error()), true)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Snapshot cache unavailable", err.Error(), true)
}

func NewSearchIndexFailedError(err error) *StandardError {
	return newError(ErrCodeSearchIndexFailed, "Search index update failed", err.Error(), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

// NewAINotConfiguredError is raised when no generative API key is set.
func NewAINotConfiguredError() *StandardError {
	return newError(ErrCodeAINotConfigured, "AI API key not configured", "", false)
}

func NewAIGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeAIGenerationFailed, "AI response generation failed", err.Error(), true)
}

func NewAITimeoutError(timeout time.Duration) *StandardError {
	return newError(ErrCodeAITimeout, "AI request timed out", fmt.Sprintf("timeout: %s", timeout), true)
}

func NewInvalidPromptError(details string) *StandardError {
	return newError(ErrCodeInvalidPrompt, "AI request is invalid", details, false)
}

func NewAdminUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeAdminUnauthorized, "Admin authorization required", details, false)
}

// NewAuthProviderError reports a failed call to the identity provider.
func NewAuthProviderError(err error, retryable bool) *StandardError {
	return newError(ErrCodeAuthProviderUnavailable, "Failed to verify token with Keycloak", err.Error(), retryable)
}

// NewEngineError wraps a failed Zeebe command.
func NewEngineError(operation string, err error, retryable bool) *StandardError {
	code := ErrCodeEngineRejected
	if retryable {
		code = ErrCodeEngineUnavailable
	}
	return newError(code, fmt.Sprintf("Zeebe operation '%s' failed", operation), err.Error(), retryable)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeListingNotFound:              "LISTING_NOT_FOUND",
	ErrCodeInvalidListing:               "INVALID_LISTING",
	ErrCodeInvalidFilterFormat:          "INVALID_FILTER_FORMAT",
	ErrCodeInquiryValidationFailed:      "INQUIRY_VALIDATION_FAILED",
	ErrCodeConsultationValidationFailed: "CONSULTATION_VALIDATION_FAILED",
	ErrCodeRequestNotFound:              "REQUEST_NOT_FOUND",
	ErrCodeInvalidStatus:                "INVALID_STATUS",
	ErrCodeDocumentStoreUnavailable:     "DOCUMENT_STORE_UNAVAILABLE",
	ErrCodeDatabaseInsertFailed:         "DATABASE_INSERT_FAILED",
	ErrCodeCacheUnavailable:             "CACHE_UNAVAILABLE",
	ErrCodeSearchIndexFailed:            "SEARCH_INDEX_FAILED",
	ErrCodeNotificationSendFailed:       "NOTIFICATION_SEND_FAILED",
	ErrCodeAINotConfigured:              "AI_NOT_CONFIGURED",
	ErrCodeAIGenerationFailed:           "AI_GENERATION_FAILED",
	ErrCodeAITimeout:                    "AI_TIMEOUT",
	ErrCodeInvalidPrompt:                "INVALID_PROMPT",
	ErrCodeAdminUnauthorized:            "ADMIN_UNAUTHORIZED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDocumentStoreUnavailable,
		ErrCodeDatabaseInsertFailed,
		ErrCodeCacheUnavailable,
		ErrCodeSearchIndexFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeAuthProviderUnavailable,
		ErrCodeEngineUnavailable:
		return 3

	case ErrCodeAIGenerationFailed:
		return 2

	case ErrCodeAITimeout:
		return 1

	default:
		return 0 // business errors are thrown, not retried
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "ADMIN") || strings.HasPrefix(codeStr, "AUTH"):
		return "AUTH"
	case strings.HasPrefix(codeStr, "AI_"):
		return "AI"
	case strings.HasPrefix(codeStr, "WORKFLOW_ENGINE"):
		return "ENGINE"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CACHE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	default:
		return "OTHER"
	}
}

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// InquirySchema mirrors the public inquiry form.
const InquirySchema = `{
  "type": "object",
  "required": ["name", "phone", "message"],
  "properties": {
    "name":      {"type": "string", "minLength": 2},
    "phone":     {"type": "string", "minLength": 10},
    "email":     {"type": "string", "anyOf": [{"format": "email"}, {"maxLength": 0}]},
    "message":   {"type": "string", "minLength": 10},
    "listingId": {"type": "string"}
  }
}`

// ConsultationSchema mirrors the consultation booking form.
const ConsultationSchema = `{
  "type": "object",
  "required": ["name", "phone", "preferredDate", "preferredTime", "consultationType"],
  "properties": {
    "name":             {"type": "string", "minLength": 2},
    "phone":            {"type": "string", "minLength": 10},
    "email":            {"type": "string", "anyOf": [{"format": "email"}, {"maxLength": 0}]},
    "preferredDate":    {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "preferredTime":    {"type": "string", "minLength": 1},
    "consultationType": {"type": "string", "enum": ["visit", "phone", "online"]},
    "message":          {"type": "string"}
  }
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds a compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// MustValidator panics on an invalid schema; for package-level schemas only.
func MustValidator(schemaJSON string) *Validator {
	v, err := NewValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks doc, which may be any value encodable as JSON.
func (v *Validator) Validate(doc interface{}) (*ValidationResult, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			if missing, ok := desc.Details()["property"].(string); ok {
				field = missing
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

var nonDigit = regexp.MustCompile(`\D`)

// FormatPhone renders an 11 or 10 digit number as 010-1234-5678 or
// 011-123-4567 style groups. Anything else is returned unchanged.
func FormatPhone(phone string) string {
	digits := nonDigit.ReplaceAllString(phone, "")
	switch len(digits) {
	case 11:
		return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
	case 10:
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	default:
		return phone
	}
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	emailPattern := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailPattern.MatchString(email)
}

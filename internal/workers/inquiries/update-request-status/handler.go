// internal/workers/inquiries/update-request-status/handler.go
package updaterequeststatus

import (
	"context"
	"fmt"
	"strings"

	"realty-workers/internal/common/auth"
	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "update-request-status"

type RequestStore interface {
	UpdateInquiryStatus(ctx context.Context, id string, status models.RequestStatus, notes, handledBy string) (*models.Inquiry, error)
	UpdateConsultationStatus(ctx context.Context, id string, status models.RequestStatus, notes, handledBy string) (*models.Consultation, error)
}

type Handler struct {
	config     *Config
	store      RequestStore
	authorizer auth.Authorizer
	logger     logger.Logger
	runner     *camunda.Runner
}

func NewHandler(config *Config, store RequestStore, authorizer auth.Authorizer, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		authorizer: authorizer,
		logger:     log,
		runner:     camunda.NewRunner(TaskType, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	var input Input
	h.runner.Run(client, job, &input, func(ctx context.Context) (interface{}, error) {
		return h.Execute(ctx, &input)
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.authorizer == nil {
		return nil, errors.NewAdminUnauthorizedError("admin verification is not configured")
	}
	principal, err := h.authorizer.Authorize(ctx, input.AdminToken)
	if err != nil {
		return nil, err
	}

	status := models.RequestStatus(input.Status)
	if !status.Valid() {
		return nil, errors.NewInvalidStatusError(input.Status)
	}
	id := strings.TrimSpace(input.RequestID)
	if id == "" {
		return nil, errors.NewRequestNotFoundError(input.Kind, "(empty)")
	}
	notes := strings.TrimSpace(input.AdminNotes)

	out := &Output{
		Kind:        input.Kind,
		RequestID:   id,
		Status:      string(status),
		StatusLabel: models.RequestStatusLabels[status],
		HandledBy:   principal.Subject,
	}

	switch input.Kind {
	case KindInquiry:
		out.Inquiry, err = h.store.UpdateInquiryStatus(ctx, id, status, notes, principal.Subject)
	case KindConsultation:
		out.Consultation, err = h.store.UpdateConsultationStatus(ctx, id, status, notes, principal.Subject)
	default:
		return nil, errors.NewInvalidStatusError(fmt.Sprintf("unknown request kind '%s'", input.Kind))
	}
	if err != nil {
		return nil, err
	}

	h.logger.Info("request status updated", map[string]interface{}{
		"kind":      input.Kind,
		"requestId": id,
		"status":    status,
		"by":        principal.Subject,
	})
	return out, nil
}

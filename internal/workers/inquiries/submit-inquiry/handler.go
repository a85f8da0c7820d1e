// internal/workers/inquiries/submit-inquiry/handler.go
package submitinquiry

import (
	"context"
	"strings"

	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/common/validation"
	"realty-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "submit-inquiry"

var inquiryValidator = validation.MustValidator(validation.InquirySchema)

type InquiryStore interface {
	CreateInquiry(ctx context.Context, in *models.Inquiry) (*models.Inquiry, error)
}

type Handler struct {
	config *Config
	store  InquiryStore
	logger logger.Logger
	runner *camunda.Runner
}

func NewHandler(config *Config, store InquiryStore, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  store,
		logger: log,
		runner: camunda.NewRunner(TaskType, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	var input Input
	h.runner.Run(client, job, &input, func(ctx context.Context) (interface{}, error) {
		return h.Execute(ctx, &input)
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	form := Input{
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Email:     strings.TrimSpace(input.Email),
		Message:   strings.TrimSpace(input.Message),
		ListingID: strings.TrimSpace(input.ListingID),
	}

	result, err := inquiryValidator.Validate(form)
	if err != nil {
		return nil, errors.NewInquiryValidationError(err.Error())
	}
	if !result.Valid {
		h.logger.Info("inquiry rejected", map[string]interface{}{
			"errors": len(result.Errors),
		})
		return nil, errors.NewInquiryValidationError(strings.Join(result.GetErrorMessages(), "; ")).
			WithMetadata("fields", result.Errors)
	}

	inquiryType := InquiryTypeGeneral
	if form.ListingID != "" {
		inquiryType = InquiryTypeProperty
	}

	stored, err := h.store.CreateInquiry(ctx, &models.Inquiry{
		ListingID:   form.ListingID,
		Name:        form.Name,
		Phone:       validation.FormatPhone(form.Phone),
		Email:       form.Email,
		Message:     form.Message,
		InquiryType: inquiryType,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("inquiry stored", map[string]interface{}{
		"inquiryId":   stored.ID,
		"inquiryType": inquiryType,
		"phone":       stored.Phone,
	})

	return &Output{
		InquiryID:   stored.ID,
		Status:      string(stored.Status),
		InquiryType: stored.InquiryType,
		Phone:       stored.Phone,
		CreatedAt:   stored.CreatedAt,
	}, nil
}

// internal/workers/inquiries/book-consultation/handler.go
package bookconsultation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/common/validation"
	"realty-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "book-consultation"

var consultationValidator = validation.MustValidator(validation.ConsultationSchema)

var seoul = time.FixedZone("KST", 9*60*60)

type ConsultationStore interface {
	CreateConsultation(ctx context.Context, c *models.Consultation) (*models.Consultation, error)
}

type Handler struct {
	config *Config
	store  ConsultationStore
	logger logger.Logger
	runner *camunda.Runner
	now    func() time.Time
}

func NewHandler(config *Config, store ConsultationStore, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  store,
		logger: log,
		runner: camunda.NewRunner(TaskType, config.Timeout, log, obs),
		now:    time.Now,
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
		Name:             strings.TrimSpace(input.Name),
		Phone:            strings.TrimSpace(input.Phone),
		Email:            strings.TrimSpace(input.Email),
		PreferredDate:    strings.TrimSpace(input.PreferredDate),
		PreferredTime:    strings.TrimSpace(input.PreferredTime),
		ConsultationType: strings.TrimSpace(input.ConsultationType),
		Message:          strings.TrimSpace(input.Message),
	}

	result, err := consultationValidator.Validate(form)
	if err != nil {
		return nil, errors.NewConsultationValidationError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewConsultationValidationError(strings.Join(result.GetErrorMessages(), "; ")).
			WithMetadata("fields", result.Errors)
	}

	if err := h.checkDate(form.PreferredDate); err != nil {
		return nil, err
	}

	stored, err := h.store.CreateConsultation(ctx, &models.Consultation{
		Name:             form.Name,
		Phone:            validation.FormatPhone(form.Phone),
		Email:            form.Email,
		PreferredDate:    form.PreferredDate,
		PreferredTime:    form.PreferredTime,
		ConsultationType: models.ConsultationType(form.ConsultationType),
		Message:          form.Message,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("consultation booked", map[string]interface{}{
		"consultationId": stored.ID,
		"date":           stored.PreferredDate,
		"type":           stored.ConsultationType,
		"phone":          stored.Phone,
	})

	return &Output{
		ConsultationID:        stored.ID,
		Status:                string(stored.Status),
		ConsultationTypeLabel: models.ConsultationTypeLabels[stored.ConsultationType],
		PreferredDate:         stored.PreferredDate,
		PreferredTime:         stored.PreferredTime,
		CreatedAt:             stored.CreatedAt,
	}, nil
}

// checkDate rejects calendar-invalid dates such as 2026-02-30 and, unless
// configured otherwise, dates before today in Korean time.
func (h *Handler) checkDate(date string) error {
	day, err := time.ParseInLocation("2006-01-02", date, seoul)
	if err != nil {
		return errors.NewConsultationValidationError(fmt.Sprintf("preferredDate: invalid date %q", date))
	}
	if h.config.AllowPastDates {
		return nil
	}
	y, m, d := h.now().In(seoul).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, seoul)
	if day.Before(today) {
		return errors.NewConsultationValidationError(fmt.Sprintf("preferredDate: %s is in the past", date))
	}
	return nil
}

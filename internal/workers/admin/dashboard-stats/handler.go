// internal/workers/admin/dashboard-stats/handler.go
package dashboardstats

import (
	"context"

	"realty-workers/internal/common/auth"
	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "dashboard-stats"

type StatsStore interface {
	GetStats(ctx context.Context) (*models.Stats, error)
	ListInquiries(ctx context.Context, limit int) ([]models.Inquiry, error)
	ListConsultations(ctx context.Context, limit int) ([]models.Consultation, error)
}

type Handler struct {
	config     *Config
	store      StatsStore
	authorizer auth.Authorizer
	logger     logger.Logger
	runner     *camunda.Runner
}

func NewHandler(config *Config, store StatsStore, authorizer auth.Authorizer, log logger.Logger, obs *observability.Observability) *Handler {
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

// Execute returns the dashboard counters. The recent lists are best effort:
// a failure there marks the output partial instead of failing the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.authorizer == nil {
		return nil, errors.NewAdminUnauthorizedError("admin verification is not configured")
	}
	if _, err := h.authorizer.Authorize(ctx, input.AdminToken); err != nil {
		return nil, err
	}

	stats, err := h.store.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Stats:                 *stats,
		RecentInquiries:       []models.Inquiry{},
		UpcomingConsultations: []models.Consultation{},
	}

	if inquiries, err := h.store.ListInquiries(ctx, h.config.RecentLimit); err != nil {
		h.logger.Warn("recent inquiries unavailable", map[string]interface{}{"error": err.Error()})
		out.Partial = true
	} else if inquiries != nil {
		out.RecentInquiries = inquiries
	}

	if consultations, err := h.store.ListConsultations(ctx, h.config.UpcomingLimit); err != nil {
		h.logger.Warn("upcoming consultations unavailable", map[string]interface{}{"error": err.Error()})
		out.Partial = true
	} else if consultations != nil {
		out.UpcomingConsultations = consultations
	}

	return out, nil
}

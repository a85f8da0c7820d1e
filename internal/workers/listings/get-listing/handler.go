// internal/workers/listings/get-listing/handler.go
package getlisting

import (
	"context"
	"strings"

	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/listing"
	"realty-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "get-listing"

type ListingReader interface {
	GetListing(ctx context.Context, id string) (*models.Listing, error)
}

type Handler struct {
	config   *Config
	listings ListingReader
	logger   logger.Logger
	runner   *camunda.Runner
}

func NewHandler(config *Config, listings ListingReader, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		listings: listings,
		logger:   log,
		runner:   camunda.NewRunner(TaskType, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	var input Input
	h.runner.Run(client, job, &input, func(ctx context.Context) (interface{}, error) {
		return h.Execute(ctx, &input)
	})
}

// Execute loads one listing with its images. Each call counts as a view.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	id := strings.TrimSpace(input.ListingID)
	if id == "" {
		return nil, errors.NewInvalidListingError("listingId is required")
	}

	l, err := h.listings.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Output{
		Listing:              *l,
		DisplayPrice:         listing.FormatDisplayPrice(*l),
		DisplayArea:          listing.FormatArea(l.AreaSquareMeters),
		PropertyTypeLabel:    models.PropertyTypeLabels[l.PropertyType],
		TransactionTypeLabel: models.TransactionTypeLabels[l.TransactionType],
		StatusLabel:          models.ListingStatusLabels[l.Status],
	}, nil
}

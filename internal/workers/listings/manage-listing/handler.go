// internal/workers/listings/manage-listing/handler.go
package managelisting

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

const TaskType = "manage-listing"

type ListingWriter interface {
	CreateListing(ctx context.Context, l *models.Listing) (*models.Listing, error)
	UpdateListing(ctx context.Context, id string, patch map[string]interface{}) (*models.Listing, error)
	UpdateListingStatus(ctx context.Context, id string, status models.ListingStatus) (*models.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	AddListingImage(ctx context.Context, listingID string, img *models.ListingImage) (*models.ListingImage, error)
}

// SearchIndex mirrors listing writes. Optional.
type SearchIndex interface {
	IndexListing(ctx context.Context, l *models.Listing) error
	RemoveListing(ctx context.Context, id string) error
}

type HandlerOptions struct {
	Config        *Config
	Listings      ListingWriter
	Index         SearchIndex
	Authorizer    auth.Authorizer
	Logger        logger.Logger
	Observability *observability.Observability
}

type Handler struct {
	config     *Config
	listings   ListingWriter
	index      SearchIndex
	authorizer auth.Authorizer
	logger     logger.Logger
	runner     *camunda.Runner
}

func NewHandler(opts HandlerOptions) *Handler {
	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     opts.Config,
		listings:   opts.Listings,
		index:      opts.Index,
		authorizer: opts.Authorizer,
		logger:     log,
		runner:     camunda.NewRunner(TaskType, opts.Config.Timeout, log, opts.Observability),
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

	id := strings.TrimSpace(input.ListingID)
	out := &Output{Action: input.Action, ListingID: id, ProcessedBy: principal.Subject}

	switch input.Action {
	case ActionCreate:
		if err := validateListing(input.Listing); err != nil {
			return nil, err
		}
		created, err := h.listings.CreateListing(ctx, input.Listing)
		if err != nil {
			return nil, err
		}
		out.ListingID = created.ID
		out.Listing = created
		out.Indexed = h.mirror(ctx, created)

	case ActionUpdate:
		if id == "" {
			return nil, errors.NewInvalidListingError("listingId is required")
		}
		if len(input.Patch) == 0 {
			return nil, errors.NewInvalidListingError("patch is empty")
		}
		if err := validatePatch(input.Patch); err != nil {
			return nil, err
		}
		updated, err := h.listings.UpdateListing(ctx, id, input.Patch)
		if err != nil {
			return nil, err
		}
		out.Listing = updated
		out.Indexed = h.mirror(ctx, updated)

	case ActionStatus:
		if id == "" {
			return nil, errors.NewInvalidListingError("listingId is required")
		}
		status := models.ListingStatus(input.Status)
		if !status.Valid() {
			return nil, errors.NewInvalidStatusError(input.Status)
		}
		updated, err := h.listings.UpdateListingStatus(ctx, id, status)
		if err != nil {
			return nil, err
		}
		out.Listing = updated
		out.Indexed = h.mirror(ctx, updated)

	case ActionDelete:
		if id == "" {
			return nil, errors.NewInvalidListingError("listingId is required")
		}
		if err := h.listings.DeleteListing(ctx, id); err != nil {
			return nil, err
		}
		out.Deleted = true
		out.Indexed = h.unmirror(ctx, id)

	case ActionAddImage:
		if id == "" {
			return nil, errors.NewInvalidListingError("listingId is required")
		}
		if input.Image == nil || strings.TrimSpace(input.Image.URL) == "" {
			return nil, errors.NewInvalidListingError("image url is required")
		}
		img, err := h.listings.AddListingImage(ctx, id, input.Image)
		if err != nil {
			return nil, err
		}
		out.Image = img

	default:
		return nil, errors.NewInvalidListingError(fmt.Sprintf("unknown action '%s'", input.Action))
	}

	h.logger.Info("listing changed", map[string]interface{}{
		"action":    input.Action,
		"listingId": out.ListingID,
		"by":        principal.Subject,
	})
	return out, nil
}

// mirror writes l to the search index. Failures are logged and reported as
// not indexed; the store write already succeeded.
func (h *Handler) mirror(ctx context.Context, l *models.Listing) bool {
	if h.index == nil || !h.config.IndexOnWrite {
		return false
	}
	if err := h.index.IndexListing(ctx, l); err != nil {
		h.logger.Warn("search index update failed", map[string]interface{}{
			"listingId": l.ID,
			"error":     err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) unmirror(ctx context.Context, id string) bool {
	if h.index == nil || !h.config.IndexOnWrite {
		return false
	}
	if err := h.index.RemoveListing(ctx, id); err != nil {
		h.logger.Warn("search index removal failed", map[string]interface{}{
			"listingId": id,
			"error":     err.Error(),
		})
		return false
	}
	return true
}

func validateListing(l *models.Listing) error {
	if l == nil {
		return errors.NewInvalidListingError("listing is required")
	}
	if strings.TrimSpace(l.Title) == "" {
		return errors.NewInvalidListingError("title is required")
	}
	if !l.PropertyType.Valid() {
		return errors.NewInvalidListingError(fmt.Sprintf("invalid propertyType '%s'", l.PropertyType))
	}
	if !l.TransactionType.Valid() {
		return errors.NewInvalidListingError(fmt.Sprintf("invalid transactionType '%s'", l.TransactionType))
	}
	if l.Status != "" && !l.Status.Valid() {
		return errors.NewInvalidStatusError(string(l.Status))
	}
	if l.TransactionType == models.TransactionMonthly {
		if l.Deposit == nil && l.MonthlyRent == nil {
			return errors.NewInvalidListingError("monthly listings need deposit or monthlyRent")
		}
	} else if l.Price == nil {
		return errors.NewInvalidListingError("price is required")
	}
	return nil
}

func validatePatch(patch map[string]interface{}) error {
	if err := models.CheckListingPatch(patch); err != nil {
		return errors.NewInvalidListingError(fmt.Sprintf("patch does not fit a listing: %v", err))
	}
	checks := map[string]func(string) bool{
		"propertyType":    func(s string) bool { return models.PropertyType(s).Valid() },
		"transactionType": func(s string) bool { return models.TransactionType(s).Valid() },
		"status":          func(s string) bool { return models.ListingStatus(s).Valid() },
	}
	for key, valid := range checks {
		raw, ok := patch[key]
		if !ok {
			continue
		}
		s, isString := raw.(string)
		if !isString || !valid(s) {
			return errors.NewInvalidListingError(fmt.Sprintf("invalid %s '%v'", key, raw))
		}
	}
	if title, ok := patch["title"]; ok {
		if s, isString := title.(string); !isString || strings.TrimSpace(s) == "" {
			return errors.NewInvalidListingError("title cannot be empty")
		}
	}
	return nil
}

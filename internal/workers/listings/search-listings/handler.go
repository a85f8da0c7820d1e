// internal/workers/listings/search-listings/handler.go
package searchlistings

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"realty-workers/internal/common/auth"
	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/metrics"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/listing"
	"realty-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "search-listings"

// ListingSource supplies the listing snapshot.
type ListingSource interface {
	ListListings(ctx context.Context) ([]models.Listing, error)
}

type Handler struct {
	config     *Config
	listings   ListingSource
	authorizer auth.Authorizer
	logger     logger.Logger
	runner     *camunda.Runner
}

// NewHandler builds the handler. authorizer may be nil, in which case
// includeAll requests are rejected.
func NewHandler(config *Config, listings ListingSource, authorizer auth.Authorizer, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		listings:   listings,
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
	spec, err := parseFilters(input.RawFilters)
	if err != nil {
		return nil, err
	}

	sortKey := listing.SortNewest
	if s := strings.TrimSpace(input.Sort); s != "" {
		sortKey = listing.SortKey(s)
		if !sortKey.Valid() {
			return nil, errors.NewInvalidFilterFormatError(fmt.Sprintf("invalid sort '%s'", s))
		}
	}

	page := h.parsePositive(input.Page, 1)
	pageSize := h.parsePositive(input.PageSize, h.config.DefaultPageSize)
	if pageSize > listing.MaxPageSize {
		pageSize = listing.MaxPageSize
	}

	if input.IncludeAll {
		if err := h.authorize(ctx, input.AdminToken); err != nil {
			return nil, err
		}
	} else {
		available := models.ListingAvailable
		spec.Status = &available
	}

	out := &Output{
		Items:          []models.Listing{},
		Page:           page,
		PageSize:       pageSize,
		Sort:           sortKey,
		AppliedFilters: spec,
	}

	snapshot, err := h.listings.ListListings(ctx)
	if err != nil {
		// An unreachable store renders as an empty list, never a failed job.
		h.logger.Warn("listing snapshot unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		out.Degraded = true
		return out, nil
	}

	filtered := listing.Filter(snapshot, spec)
	metrics.ListingQueryResults.WithLabelValues("worker").Observe(float64(len(filtered)))

	ordered := listing.Truncate(listing.Sort(filtered, sortKey), h.config.ResultLimit)
	items, total := listing.Paginate(ordered, page-1, pageSize)

	out.Items = items
	out.Total = total
	out.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))

	h.logger.Info("listings searched", map[string]interface{}{
		"snapshot": len(snapshot),
		"matched":  len(filtered),
		"total":    total,
		"page":     page,
		"sort":     sortKey,
	})
	return out, nil
}

func (h *Handler) authorize(ctx context.Context, token string) error {
	if h.authorizer == nil {
		return errors.NewAdminUnauthorizedError("admin verification is not configured")
	}
	_, err := h.authorizer.Authorize(ctx, token)
	return err
}

// parseFilters turns the raw filter map into a FilterSpec. Unknown enum
// values and unparseable numbers are INVALID_FILTER_FORMAT; empty strings
// leave the filter unset.
//
// This is stricter than the listing engine and the URL codec on purpose.
// There an unparseable number counts as absent and minPrice > maxPrice
// simply matches nothing. Process callers send typed variables, so a bad
// value here is a modelling error and is surfaced.
func parseFilters(raw map[string]interface{}) (listing.FilterSpec, error) {
	var spec listing.FilterSpec
	if raw == nil {
		return spec, nil
	}

	if s := stringValue(raw["propertyType"]); s != "" {
		pt := models.PropertyType(s)
		if !pt.Valid() {
			return spec, errors.NewInvalidFilterFormatError(fmt.Sprintf("invalid propertyType '%s'", s))
		}
		spec.PropertyType = &pt
	}
	if s := stringValue(raw["transactionType"]); s != "" {
		tt := models.TransactionType(s)
		if !tt.Valid() {
			return spec, errors.NewInvalidFilterFormatError(fmt.Sprintf("invalid transactionType '%s'", s))
		}
		spec.TransactionType = &tt
	}
	if s := stringValue(raw["status"]); s != "" {
		st := models.ListingStatus(s)
		if !st.Valid() {
			return spec, errors.NewInvalidFilterFormatError(fmt.Sprintf("invalid status '%s'", s))
		}
		spec.Status = &st
	}
	if s := stringValue(raw["city"]); s != "" {
		spec.City = &s
	}
	if s := stringValue(raw["district"]); s != "" {
		spec.District = &s
	}
	if s := stringValue(raw["search"]); s != "" {
		spec.Search = &s
	}

	numbers := []struct {
		keys   []string
		target **float64
	}{
		{[]string{"minPrice"}, &spec.MinPrice},
		{[]string{"maxPrice"}, &spec.MaxPrice},
		{[]string{"minRooms", "rooms"}, &spec.MinRooms},
	}
	for _, n := range numbers {
		for _, key := range n.keys {
			v, ok := raw[key]
			if !ok || v == nil {
				continue
			}
			f, set, err := parseNumber(v)
			if err != nil {
				return spec, errors.NewInvalidFilterFormatError(fmt.Sprintf("invalid %s: %v", key, err))
			}
			if set {
				*n.target = &f
			}
			break
		}
	}

	if spec.MinPrice != nil && spec.MaxPrice != nil && *spec.MinPrice > *spec.MaxPrice {
		return spec, errors.NewInvalidFilterFormatError(
			fmt.Sprintf("minPrice (%v) > maxPrice (%v)", *spec.MinPrice, *spec.MaxPrice))
	}
	return spec, nil
}

func stringValue(raw interface{}) string {
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

var thousandsSep = regexp.MustCompile(`[,\s]`)

// parseNumber accepts JSON numbers and numeric strings such as "50,000".
// An empty string is reported as unset.
func parseNumber(raw interface{}) (float64, bool, error) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false, nil
		}
		return v, true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	case string:
		cleaned := thousandsSep.ReplaceAllString(v, "")
		if cleaned == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false, fmt.Errorf("not a number: %q", v)
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("unsupported type %T", raw)
	}
}

// parsePositive reads a page or page size; anything below 1 or unparseable
// falls back to def.
func (h *Handler) parsePositive(raw interface{}, def int) int {
	if raw == nil {
		return def
	}
	f, set, err := parseNumber(raw)
	if err != nil || !set || f < 1 {
		return def
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

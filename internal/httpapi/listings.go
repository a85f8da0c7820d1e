package httpapi

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/metrics"
	"realty-workers/internal/listing"
	"realty-workers/internal/models"
)

type listResponse struct {
	Items      []models.Listing `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
	Sort       listing.SortKey  `json:"sort"`
	Query      string           `json:"query"`
	PrevQuery  string           `json:"prevQuery,omitempty"`
	NextQuery  string           `json:"nextQuery,omitempty"`
}

type detailResponse struct {
	Listing              models.Listing `json:"listing"`
	DisplayPrice         string         `json:"displayPrice"`
	DisplayArea          string         `json:"displayArea"`
	PropertyTypeLabel    string         `json:"propertyTypeLabel"`
	TransactionTypeLabel string         `json:"transactionTypeLabel"`
	StatusLabel          string         `json:"statusLabel"`
}

// listListings serves the public list page: available listings only, newest
// first unless sorted otherwise, at most ResultLimit of them, paged.
func (s *Server) listListings(c *gin.Context) {
	params := listing.ParseValues(c.Request.URL.Query())
	available := models.ListingAvailable
	params.Filter.Status = &available

	pageSize := s.opts.DefaultPageSize
	if n, err := strconv.Atoi(c.Query("page_size")); err == nil && n > 0 {
		pageSize = n
	}
	if pageSize > listing.MaxPageSize {
		pageSize = listing.MaxPageSize
	}

	resp := listResponse{
		Items:    []models.Listing{},
		Page:     params.PageIndex + 1,
		PageSize: pageSize,
		Sort:     params.Sort,
		Query:    s.linkQuery(params, pageSize),
	}

	snapshot, err := s.store.ListListings(c.Request.Context())
	if err != nil {
		s.logger.Warn("listing snapshot unavailable", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusOK, resp)
		return
	}

	limit := s.opts.ResultLimit
	if limit <= 0 {
		limit = listing.ResultLimit
	}
	top := listing.Query(snapshot, params.Filter, params.Sort, 0, limit)
	metrics.ListingQueryResults.WithLabelValues("http").Observe(float64(top.Total))

	items, total := listing.Paginate(top.Items, params.PageIndex, pageSize)
	resp.Items = items
	resp.Total = total
	resp.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))

	if params.PageIndex > 0 {
		prev := params
		prev.PageIndex--
		resp.PrevQuery = s.linkQuery(prev, pageSize)
	}
	if params.PageIndex+1 < resp.TotalPages {
		next := params
		next.PageIndex++
		resp.NextQuery = s.linkQuery(next, pageSize)
	}

	c.JSON(http.StatusOK, resp)
}

// linkQuery encodes p for page links, keeping a non-default page size.
func (s *Server) linkQuery(p listing.Params, pageSize int) string {
	v := p.Values()
	if pageSize != s.opts.DefaultPageSize {
		v.Set("page_size", strconv.Itoa(pageSize))
	}
	return v.Encode()
}

func (s *Server) getListing(c *gin.Context) {
	l, err := s.store.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.CodeOf(err) == errors.ErrCodeListingNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": errors.Normalize(err)})
		return
	}

	c.JSON(http.StatusOK, detailResponse{
		Listing:              *l,
		DisplayPrice:         listing.FormatDisplayPrice(*l),
		DisplayArea:          listing.FormatArea(l.AreaSquareMeters),
		PropertyTypeLabel:    models.PropertyTypeLabels[l.PropertyType],
		TransactionTypeLabel: models.TransactionTypeLabels[l.TransactionType],
		StatusLabel:          models.ListingStatusLabels[l.Status],
	})
}

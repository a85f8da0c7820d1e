// internal/workers/listings/search-listings/models.go
package searchlistings

import (
	"realty-workers/internal/listing"
	"realty-workers/internal/models"
)

type Input struct {
	RawFilters map[string]interface{} `json:"rawFilters"`
	Sort       string                 `json:"sort"`
	Page       interface{}            `json:"page"`
	PageSize   interface{}            `json:"pageSize"`
	IncludeAll bool                   `json:"includeAll"`
	AdminToken string                 `json:"adminToken,omitempty"`
}

type Output struct {
	Items          []models.Listing   `json:"items"`
	Total          int                `json:"total"`
	Page           int                `json:"page"`
	PageSize       int                `json:"pageSize"`
	TotalPages     int                `json:"totalPages"`
	Sort           listing.SortKey    `json:"sort"`
	AppliedFilters listing.FilterSpec `json:"appliedFilters"`
	Degraded       bool               `json:"degraded,omitempty"`
}

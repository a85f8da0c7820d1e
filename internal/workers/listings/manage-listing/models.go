// internal/workers/listings/manage-listing/models.go
package managelisting

import "realty-workers/internal/models"

const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionStatus   = "status"
	ActionAddImage = "addImage"
)

type Input struct {
	Action     string                 `json:"action"`
	ListingID  string                 `json:"listingId,omitempty"`
	Listing    *models.Listing        `json:"listing,omitempty"`
	Patch      map[string]interface{} `json:"patch,omitempty"`
	Status     string                 `json:"status,omitempty"`
	Image      *models.ListingImage   `json:"image,omitempty"`
	AdminToken string                 `json:"adminToken"`
}

type Output struct {
	Action      string               `json:"action"`
	ListingID   string               `json:"listingId"`
	Listing     *models.Listing      `json:"listing,omitempty"`
	Image       *models.ListingImage `json:"image,omitempty"`
	Deleted     bool                 `json:"deleted"`
	Indexed     bool                 `json:"indexed"`
	ProcessedBy string               `json:"processedBy"`
}

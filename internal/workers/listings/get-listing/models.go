// internal/workers/listings/get-listing/models.go
package getlisting

import "realty-workers/internal/models"

type Input struct {
	ListingID string `json:"listingId"`
}

type Output struct {
	Listing              models.Listing `json:"listing"`
	DisplayPrice         string         `json:"displayPrice"`
	DisplayArea          string         `json:"displayArea"`
	PropertyTypeLabel    string         `json:"propertyTypeLabel"`
	TransactionTypeLabel string         `json:"transactionTypeLabel"`
	StatusLabel          string         `json:"statusLabel"`
}

// internal/workers/inquiries/submit-inquiry/models.go
package submitinquiry

import "time"

const (
	InquiryTypeProperty = "property"
	InquiryTypeGeneral  = "general"
)

type Input struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Message   string `json:"message"`
	ListingID string `json:"listingId,omitempty"`
}

type Output struct {
	InquiryID   string    `json:"inquiryId"`
	Status      string    `json:"status"`
	InquiryType string    `json:"inquiryType"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"createdAt"`
}

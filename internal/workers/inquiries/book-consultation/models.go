// internal/workers/inquiries/book-consultation/models.go
package bookconsultation

import "time"

type Input struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	PreferredDate    string `json:"preferredDate"`
	PreferredTime    string `json:"preferredTime"`
	ConsultationType string `json:"consultationType"`
	Message          string `json:"message,omitempty"`
}

type Output struct {
	ConsultationID        string    `json:"consultationId"`
	Status                string    `json:"status"`
	ConsultationTypeLabel string    `json:"consultationTypeLabel"`
	PreferredDate         string    `json:"preferredDate"`
	PreferredTime         string    `json:"preferredTime"`
	CreatedAt             time.Time `json:"createdAt"`
}

// internal/workers/inquiries/update-request-status/models.go
package updaterequeststatus

import "realty-workers/internal/models"

const (
	KindInquiry      = "inquiry"
	KindConsultation = "consultation"
)

type Input struct {
	Kind       string `json:"kind"`
	RequestID  string `json:"requestId"`
	Status     string `json:"status"`
	AdminNotes string `json:"adminNotes,omitempty"`
	AdminToken string `json:"adminToken"`
}

type Output struct {
	Kind         string               `json:"kind"`
	RequestID    string               `json:"requestId"`
	Status       string               `json:"status"`
	StatusLabel  string               `json:"statusLabel"`
	HandledBy    string               `json:"handledBy"`
	Inquiry      *models.Inquiry      `json:"inquiry,omitempty"`
	Consultation *models.Consultation `json:"consultation,omitempty"`
}

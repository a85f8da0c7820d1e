// internal/workers/notifications/notify-admin/models.go
package notifyadmin

type Input struct {
	Kind             string `json:"kind"` // "inquiry" or "consultation"
	RequestID        string `json:"requestId"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	Message          string `json:"message,omitempty"`
	ListingID        string `json:"listingId,omitempty"`
	PreferredDate    string `json:"preferredDate,omitempty"`
	PreferredTime    string `json:"preferredTime,omitempty"`
	ConsultationType string `json:"consultationType,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

const (
	KindInquiry      = "inquiry"
	KindConsultation = "consultation"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

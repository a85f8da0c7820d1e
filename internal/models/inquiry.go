// internal/models/inquiry.go
package models

import "time"

// RequestStatus is shared by inquiries and consultations.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
)

var RequestStatusLabels = map[RequestStatus]string{
	RequestPending:    "대기중",
	RequestInProgress: "처리중",
	RequestCompleted:  "완료",
	RequestCancelled:  "취소",
}

func (s RequestStatus) Valid() bool {
	_, ok := RequestStatusLabels[s]
	return ok
}

type Inquiry struct {
	ID          string        `json:"id"`
	ListingID   string        `json:"listingId,omitempty"`
	Name        string        `json:"name"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email,omitempty"`
	Message     string        `json:"message"`
	InquiryType string        `json:"inquiryType"`
	Status      RequestStatus `json:"status"`
	AdminNotes  string        `json:"adminNotes,omitempty"`
	HandledBy   string        `json:"handledBy,omitempty"`
	HandledAt   *time.Time    `json:"handledAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type ConsultationType string

const (
	ConsultationVisit  ConsultationType = "visit"
	ConsultationPhone  ConsultationType = "phone"
	ConsultationOnline ConsultationType = "online"
)

var ConsultationTypeLabels = map[ConsultationType]string{
	ConsultationVisit:  "방문 상담",
	ConsultationPhone:  "전화 상담",
	ConsultationOnline: "온라인 상담",
}

type Consultation struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email,omitempty"`
	PreferredDate    string           `json:"preferredDate"`
	PreferredTime    string           `json:"preferredTime"`
	ConsultationType ConsultationType `json:"consultationType"`
	Message          string           `json:"message,omitempty"`
	Status           RequestStatus    `json:"status"`
	AdminNotes       string           `json:"adminNotes,omitempty"`
	HandledBy        string           `json:"handledBy,omitempty"`
	ConfirmedAt      *time.Time       `json:"confirmedAt,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Stats backs the admin dashboard counters.
type Stats struct {
	TotalListings        int `json:"totalListings"`
	AvailableListings    int `json:"availableListings"`
	PendingInquiries     int `json:"pendingInquiries"`
	PendingConsultations int `json:"pendingConsultations"`
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// Principal is the verified identity behind an admin token.
type Principal struct {
	Subject string `json:"subject"`
	Email   string `json:"email,omitempty"`
	Role    Role   `json:"role"`
}

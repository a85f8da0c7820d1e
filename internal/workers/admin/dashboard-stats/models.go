// internal/workers/admin/dashboard-stats/models.go
package dashboardstats

import "realty-workers/internal/models"

type Input struct {
	AdminToken string `json:"adminToken"`
}

type Output struct {
	Stats                 models.Stats          `json:"stats"`
	RecentInquiries       []models.Inquiry      `json:"recentInquiries"`
	UpcomingConsultations []models.Consultation `json:"upcomingConsultations"`
	Partial               bool                  `json:"partial"`
}

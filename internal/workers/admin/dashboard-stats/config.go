// internal/workers/admin/dashboard-stats/config.go
package dashboardstats

import "time"

type Config struct {
	Timeout       time.Duration
	RecentLimit   int
	UpcomingLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		RecentLimit:   5,
		UpcomingLimit: 5,
	}
}

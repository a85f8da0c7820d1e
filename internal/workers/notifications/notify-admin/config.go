// internal/workers/notifications/notify-admin/config.go
package notifyadmin

import "time"

type Config struct {
	AdminEmail   string
	AdminPhone   string
	FromEmail    string
	SenderID     string
	EmailEnabled bool
	SMSEnabled   bool
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}

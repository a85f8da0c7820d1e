// internal/workers/inquiries/update-request-status/config.go
package updaterequeststatus

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

// internal/workers/inquiries/submit-inquiry/config.go
package submitinquiry

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

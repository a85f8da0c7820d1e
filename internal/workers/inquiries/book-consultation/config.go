// internal/workers/inquiries/book-consultation/config.go
package bookconsultation

import "time"

type Config struct {
	Timeout time.Duration
	// AllowPastDates accepts a preferredDate before today.
	AllowPastDates bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        10 * time.Second,
		AllowPastDates: false,
	}
}

// internal/workers/listings/search-listings/config.go
package searchlistings

import (
	"time"

	"realty-workers/internal/listing"
)

type Config struct {
	Timeout         time.Duration
	ResultLimit     int
	DefaultPageSize int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		ResultLimit:     listing.ResultLimit,
		DefaultPageSize: 12,
	}
}

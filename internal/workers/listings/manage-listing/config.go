// internal/workers/listings/manage-listing/config.go
package managelisting

import "time"

type Config struct {
	Timeout time.Duration
	// IndexOnWrite mirrors every write into the search index when the
	// store has one.
	IndexOnWrite bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		IndexOnWrite: true,
	}
}

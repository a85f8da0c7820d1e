// internal/workers/ai-conversation/generate-description/config.go
package generatedescription

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}

// internal/workers/ai-conversation/ai-chat/config.go
package aichat

import "time"

type Config struct {
	Timeout time.Duration
	// MaxMessageLength bounds the customer question in runes.
	MaxMessageLength int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          60 * time.Second,
		MaxMessageLength: 1000,
	}
}

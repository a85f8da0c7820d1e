// pkg/seed/schema.go
package seed

import "realty-workers/internal/models"

// File is a listing seed or export: a versioned bundle of listing documents.
type File struct {
	Version    string           `json:"version" yaml:"version"`
	ExportedAt string           `json:"exportedAt,omitempty" yaml:"exportedAt,omitempty"`
	Listings   []models.Listing `json:"listings" yaml:"listings"`
}

// Problem is one validation failure in a seed file.
type Problem struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// pkg/seed/seed.go
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"realty-workers/internal/models"
)

// Load reads a seed file. Files ending in .yaml or .yml are YAML; anything
// else is JSON. A bare array of listings is accepted as well as a File.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return decode(data)
}

// Save writes f as indented JSON.
func Save(f *File, path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func decode(data []byte) (*File, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var listings []models.Listing
		if err := json.Unmarshal(data, &listings); err != nil {
			return nil, err
		}
		return &File{Listings: listings}, nil
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// yamlToJSON routes YAML through a generic tree so the listing's json field
// names apply to both formats.
func yamlToJSON(data []byte) ([]byte, error) {
	var tree interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return json.Marshal(normalize(tree))
}

func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []interface{}:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	default:
		return v
	}
}

// Validate checks what the manage-listing worker would reject on create.
func Validate(f *File) []Problem {
	var problems []Problem
	seen := map[string]int{}

	for i, l := range f.Listings {
		add := func(field, msg string) {
			problems = append(problems, Problem{Index: i, ID: l.ID, Field: field, Message: msg})
		}

		if strings.TrimSpace(l.Title) == "" {
			add("title", "title is required")
		}
		if !l.PropertyType.Valid() {
			add("propertyType", fmt.Sprintf("unknown property type %q", l.PropertyType))
		}
		if !l.TransactionType.Valid() {
			add("transactionType", fmt.Sprintf("unknown transaction type %q", l.TransactionType))
		}
		if l.Status != "" && !l.Status.Valid() {
			add("status", fmt.Sprintf("unknown status %q", l.Status))
		}
		if l.TransactionType == models.TransactionMonthly {
			if l.Deposit == nil && l.MonthlyRent == nil {
				add("deposit", "monthly listings need a deposit or monthly rent")
			}
		} else if l.Price == nil {
			add("price", "price is required")
		}
		if l.ID != "" {
			if first, dup := seen[l.ID]; dup {
				add("id", fmt.Sprintf("duplicate of listing at index %d", first))
			} else {
				seen[l.ID] = i
			}
		}
	}
	return problems
}

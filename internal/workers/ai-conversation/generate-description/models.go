// internal/workers/ai-conversation/generate-description/models.go
package generatedescription

type Input struct {
	PropertyType    string   `json:"propertyType"`
	TransactionType string   `json:"transactionType"`
	Area            *float64 `json:"area"`
	Rooms           *int     `json:"rooms"`
	Bathrooms       *int     `json:"bathrooms"`
	Floor           *int     `json:"floor"`
	Features        []string `json:"features"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	District        string   `json:"district"`
}

type Output struct {
	Description string `json:"description"`
}

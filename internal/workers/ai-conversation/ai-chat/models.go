// internal/workers/ai-conversation/ai-chat/models.go
package aichat

type Input struct {
	Message string `json:"message"`
	// Context is free-form listing text supplied by the caller.
	Context string `json:"context,omitempty"`
	// ListingID, when set and Context is empty, builds the context from the
	// listing snapshot.
	ListingID string `json:"listingId,omitempty"`
}

type Output struct {
	Reply       string `json:"reply"`
	WithContext bool   `json:"withContext"`
}

package model

// ChatRequest represents one conversational turn from the user.
type ChatRequest struct {
	ConversationID string       `json:"conversation_id" binding:"required"`
	Message        string       `json:"message" binding:"required"`
	Options        *ChatOptions `json:"options,omitempty"`
}

// ChatOptions represents per-turn options.
type ChatOptions struct {
	TopK    int  `json:"top_k"`
	Offset  int  `json:"offset"`
	Enhance bool `json:"enhance"`
}

// ChatResponse represents the engine's answer to one turn: the synthesized
// message, the filtered listing set, and the follow-up refinements.
type ChatResponse struct {
	Message     string                 `json:"message"`
	Insights    []string               `json:"insights,omitempty"`
	Results     []Listing              `json:"results"`
	Total       int                    `json:"total"`
	Refinements []RefinementSuggestion `json:"refinements,omitempty"`
	Clarify     []string               `json:"clarify,omitempty"`
	Analysis    *QueryAnalysis         `json:"analysis,omitempty"`
	Trip        *TripContext           `json:"trip,omitempty"`
	Context     *SearchContext         `json:"context,omitempty"`
	Took        int64                  `json:"took_ms"`
}

// ResetRequest asks for a fresh conversation.
type ResetRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
}

// EmbeddingBatchRequest represents a batch embedding update request.
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem represents a single embedding with listing info. An item
// carries either a precomputed vector or raw text to embed server-side.
type EmbeddingItem struct {
	ListingID string    `json:"listing_id" validate:"required"`
	Embedding []float32 `json:"embedding,omitempty" validate:"required_without=Text"`
	Text      string    `json:"text,omitempty" validate:"required_without=Embedding"`
}

// EmbeddingBatchResponse represents the response for batch embedding update.
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// FeedbackRequest represents a user action on a returned listing.
type FeedbackRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	ListingID      string `json:"listing_id" validate:"required"`
	Action         string `json:"action" validate:"required,oneof=click contact view_details"`
}

// FeedbackResponse represents feedback response.
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

package dto

type ChatMessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=8000"`
}

// ChatRequest is one conversation turn. HealthContext wins over
// Personalize when both are given.
type ChatRequest struct {
	Messages      []ChatMessageRequest `json:"messages" validate:"required,min=1,max=100,dive"`
	HealthContext string               `json:"health_context" validate:"omitempty,max=4000"`
	Personalize   bool                 `json:"personalize"`
}

package entity

// ChatRole is the author of a chat turn
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
)

// ChatMessage is one turn of a conversation. Conversations are
// append-only and live only as long as the caller keeps them.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ContactSubmission is a contact form payload. It is never persisted.
type ContactSubmission struct {
	Name    string
	Email   string
	Subject string
	Message string
}

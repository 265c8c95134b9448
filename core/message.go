package core

// Role tags a conversation message.
type Role string

// Conversation roles understood by completion providers.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }

// UserMessage builds a user-role message.
func UserMessage(content string) Message { return Message{Role: RoleUser, Content: content} }

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// IntentData is the single highest-confidence intent selected upstream.
type IntentData struct {
	Type       string            `json:"type"`
	Entities   map[string]string `json:"entities,omitempty"`
	Confidence float64           `json:"confidence"`
}

// MemoryContext carries the caller's conversation memory for one request.
type MemoryContext struct {
	SessionID string    `json:"session_id"`
	History   []Message `json:"history,omitempty"`
}

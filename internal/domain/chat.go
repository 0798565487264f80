package domain

// Chat roles as used both in the widget transcript and on the wire to the
// completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape shared by the
// widget transcript and the LLM integration. Transcript messages live in
// memory only; nothing is persisted server-side.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

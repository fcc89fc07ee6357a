package domain

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Exchange is one user turn plus its paired assistant turn within a
// session's history.
type Exchange struct {
	UserText      string
	AssistantText string
}

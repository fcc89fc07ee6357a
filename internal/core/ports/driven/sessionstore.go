package driven

// SessionStore keeps bounded per-session conversation history.
//
// Implementations must serialise appends on the same session identifier;
// distinct sessions need no coordination.
type SessionStore interface {
	// Create returns a new unique session identifier.
	Create() string

	// AppendExchange records one user/assistant exchange, creating the
	// session lazily if the identifier is unknown. Only the most recent
	// exchanges are retained, oldest evicted first.
	AppendExchange(sessionID, userText, assistantText string)

	// History renders the stored turns as alternating "User: ..." /
	// "Assistant: ..." lines in chronological order. The second return is
	// false when the session has no turns yet.
	History(sessionID string) (string, bool)

	// Clear removes a session's history.
	Clear(sessionID string)
}

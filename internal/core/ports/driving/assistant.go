package driving

import (
	"context"

	"github.com/studium-labs/studium-cli/internal/core/domain"
)

// AssistantService answers natural-language questions about the course
// corpus. This is the single externally visible query operation.
type AssistantService interface {
	// Answer processes one question. A blank sessionID starts a new
	// session; the identifier actually used is always returned so callers
	// that omitted one learn the generated identifier.
	Answer(ctx context.Context, query, sessionID string) (Answer, error)

	// Analytics reports catalog statistics.
	Analytics(ctx context.Context) (Analytics, error)
}

// Answer is the result of one question-answer exchange.
type Answer struct {
	// Text is the final grounded answer.
	Text string

	// Sources lists the provenance of every chunk surfaced while
	// answering, in the order the chunks appeared.
	Sources []domain.Source

	// SessionID identifies the conversation the exchange was recorded in.
	SessionID string
}

// Analytics summarises the catalog.
type Analytics struct {
	TotalCourses int
	CourseTitles []string
}

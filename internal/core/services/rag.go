package services

import (
	"context"
	"fmt"

	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
	"github.com/studium-labs/studium-cli/internal/core/ports/driving"
	"github.com/studium-labs/studium-cli/internal/logger"
)

// Ensure Assistant implements the interface.
var _ driving.AssistantService = (*Assistant)(nil)

// Assistant is the query facade: it composes session history, the
// generator and the tool registry into the single externally visible
// operation "answer this question".
type Assistant struct {
	store     *ChunkStore
	generator *Generator
	registry  *ToolRegistry
	sessions  driven.SessionStore
}

// NewAssistant wires the assistant and registers the retrieval tools.
func NewAssistant(store *ChunkStore, generator *Generator, sessions driven.SessionStore) *Assistant {
	registry := NewToolRegistry()
	registry.Register(NewSearchTool(store))
	registry.Register(NewOutlineTool(store))

	return &Assistant{
		store:     store,
		generator: generator,
		registry:  registry,
		sessions:  sessions,
	}
}

// Registry exposes the tool registry, mainly for tests and the MCP adapter.
func (a *Assistant) Registry() *ToolRegistry {
	return a.registry
}

// Answer processes one question: pull history, run the generation loop,
// collect provenance, record the exchange. A blank sessionID starts a new
// session and the identifier used is returned either way.
func (a *Assistant) Answer(ctx context.Context, query, sessionID string) (driving.Answer, error) {
	logger.Section("Query")
	logger.Debug("Query: %q session=%q", query, sessionID)

	if sessionID == "" {
		sessionID = a.sessions.Create()
		logger.Debug("Created session %s", sessionID)
	}

	history, _ := a.sessions.History(sessionID)

	// Provenance is scoped to a single turn.
	a.registry.ResetSources()

	text, err := a.generator.GenerateResponse(ctx, query, history, a.registry.Definitions(), a.registry)
	if err != nil {
		return driving.Answer{}, fmt.Errorf("answer query: %w", err)
	}

	sources := a.registry.LastSources()
	a.sessions.AppendExchange(sessionID, query, text)

	logger.Info("Answered with %d sources", len(sources))
	return driving.Answer{
		Text:      text,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

// Analytics reports the catalog's course count and titles.
func (a *Assistant) Analytics(ctx context.Context) (driving.Analytics, error) {
	count, err := a.store.CourseCount(ctx)
	if err != nil {
		return driving.Analytics{}, err
	}
	titles, err := a.store.ExistingCourseTitles(ctx)
	if err != nil {
		return driving.Analytics{}, err
	}
	return driving.Analytics{TotalCourses: count, CourseTitles: titles}, nil
}

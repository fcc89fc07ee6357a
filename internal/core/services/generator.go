package services

import (
	"context"
	"fmt"

	"github.com/studium-labs/studium-cli/internal/core/domain"
	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
	"github.com/studium-labs/studium-cli/internal/logger"
)

// DefaultMaxTokens bounds the model's output per call.
const DefaultMaxTokens = 800

// systemPrompt instructs the model on when to search and how to answer.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content, with tools for searching course content.

Tool usage:
- Use search_course_content for questions about specific course content or detailed educational materials
- Use get_course_outline for questions about a course's structure, lesson list, link or instructor
- One tool call per query maximum
- If a search yields no results, state that clearly without offering alternatives

Response protocol:
- Answer general knowledge questions directly without searching
- Answer course-specific questions using the tool results
- Keep answers brief, concise and focused
- Do not mention the search process or tools in your answer`

// Generator drives one question-answer exchange with the model: it sends
// the query with the tool schemas, executes at most one round of
// requested tool calls, and returns the model's final text.
type Generator struct {
	llm         driven.LLMService
	maxTokens   int
	temperature float64
}

// NewGenerator creates a generator over the given model service.
func NewGenerator(llm driven.LLMService, maxTokens int) *Generator {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Generator{llm: llm, maxTokens: maxTokens}
}

// GenerateResponse answers one query. history, when present, is appended
// to the system prompt. If the model requests tool calls they are executed
// through the registry and exactly one follow-up call is issued with the
// results appended and the tool schemas withheld; its text is terminal
// regardless of its own stop reason.
func (g *Generator) GenerateResponse(
	ctx context.Context,
	query, history string,
	tools []driven.ToolDefinition,
	registry *ToolRegistry,
) (string, error) {
	if g.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	system := systemPrompt
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}

	req := driven.MessageRequest{
		System:      system,
		Messages:    []driven.Message{driven.TextMessage(domain.RoleUser, query)},
		Tools:       tools,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	logger.Section("Answer Generation")
	logger.Debug("Initial model call: %d tools offered", len(tools))

	resp, err := g.llm.Messages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}

	if resp.StopReason == driven.StopToolUse && registry != nil {
		return g.executeToolRound(ctx, req, resp, registry)
	}

	return resp.Text(), nil
}

// executeToolRound runs every tool call the model requested, then issues
// the single follow-up call with the results appended. The follow-up is
// not offered the tool schemas again, so the loop is bounded to one round.
func (g *Generator) executeToolRound(
	ctx context.Context,
	req driven.MessageRequest,
	resp *driven.MessageResponse,
	registry *ToolRegistry,
) (string, error) {
	messages := append(req.Messages, driven.Message{
		Role:    domain.RoleAssistant,
		Content: resp.Content,
	})

	var results []driven.ContentBlock
	for _, call := range resp.ToolUses() {
		logger.Info("Executing tool %q", call.Name)
		text := registry.Execute(ctx, call.Name, call.Input)
		results = append(results, driven.ContentBlock{
			Type:      driven.BlockToolResult,
			ToolUseID: call.ID,
			Content:   text,
		})
	}
	messages = append(messages, driven.Message{
		Role:    domain.RoleUser,
		Content: results,
	})

	followup := driven.MessageRequest{
		System:      req.System,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	logger.Debug("Follow-up model call with %d tool results", len(results))
	final, err := g.llm.Messages(ctx, followup)
	if err != nil {
		return "", fmt.Errorf("follow-up model call: %w", err)
	}
	return final.Text(), nil
}

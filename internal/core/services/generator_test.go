package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studium-labs/studium-cli/internal/core/domain"
	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
)

func TestGenerator_DirectAnswerMakesOneCall(t *testing.T) {
	llm := &fakeLLM{responses: []*driven.MessageResponse{
		textResponse("Paris is the capital of France."),
	}}
	gen := NewGenerator(llm, 0)
	registry := NewToolRegistry()
	registry.Register(&staticTool{name: "unused"})

	text, err := gen.GenerateResponse(context.Background(), "capital of France?", "", registry.Definitions(), registry)
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", text)
	require.Len(t, llm.requests, 1)

	req := llm.requests[0]
	assert.Len(t, req.Tools, 1)
	assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
	assert.Zero(t, req.Temperature)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, domain.RoleUser, req.Messages[0].Role)
}

func TestGenerator_ToolRoundMakesTwoCalls(t *testing.T) {
	llm := &fakeLLM{responses: []*driven.MessageResponse{
		toolUseResponse("call-1", "lookup", map[string]any{"query": "gradient descent"}),
		textResponse("Gradient descent minimises loss."),
	}}
	gen := NewGenerator(llm, 0)

	tool := &staticTool{name: "lookup", text: "tool output text"}
	registry := NewToolRegistry()
	registry.Register(tool)

	text, err := gen.GenerateResponse(context.Background(), "what is gradient descent?", "", registry.Definitions(), registry)
	require.NoError(t, err)
	assert.Equal(t, "Gradient descent minimises loss.", text)
	require.Len(t, llm.requests, 2)

	// The tool ran with the model's arguments.
	assert.Equal(t, map[string]any{"query": "gradient descent"}, tool.gotArgs)

	// The follow-up call withholds the tool schemas and carries the
	// assistant's tool_use turn plus the tool_result turn.
	followup := llm.requests[1]
	assert.Empty(t, followup.Tools)
	require.Len(t, followup.Messages, 3)
	assert.Equal(t, domain.RoleAssistant, followup.Messages[1].Role)
	assert.Equal(t, domain.RoleUser, followup.Messages[2].Role)

	results := followup.Messages[2].Content
	require.Len(t, results, 1)
	assert.Equal(t, driven.BlockToolResult, results[0].Type)
	assert.Equal(t, "call-1", results[0].ToolUseID)
	assert.Equal(t, "tool output text", results[0].Content)
}

func TestGenerator_FollowupTextIsTerminal(t *testing.T) {
	// Even if the follow-up asks for tools again, its text is final.
	llm := &fakeLLM{responses: []*driven.MessageResponse{
		toolUseResponse("call-1", "lookup", nil),
		{
			Content: []driven.ContentBlock{
				{Type: driven.BlockText, Text: "partial answer"},
				{Type: driven.BlockToolUse, ID: "call-2", Name: "lookup"},
			},
			StopReason: driven.StopToolUse,
		},
	}}
	gen := NewGenerator(llm, 0)
	registry := NewToolRegistry()
	registry.Register(&staticTool{name: "lookup", text: "output"})

	text, err := gen.GenerateResponse(context.Background(), "q", "", registry.Definitions(), registry)
	require.NoError(t, err)
	assert.Equal(t, "partial answer", text)
	assert.Len(t, llm.requests, 2)
}

func TestGenerator_HistoryGoesIntoSystemPrompt(t *testing.T) {
	llm := &fakeLLM{responses: []*driven.MessageResponse{textResponse("ok")}}
	gen := NewGenerator(llm, 0)

	history := "User: hi\nAssistant: hello"
	_, err := gen.GenerateResponse(context.Background(), "next question", history, nil, nil)
	require.NoError(t, err)

	require.Len(t, llm.requests, 1)
	assert.Contains(t, llm.requests[0].System, "Previous conversation:\n"+history)
}

func TestGenerator_NoHistoryOmitsSection(t *testing.T) {
	llm := &fakeLLM{responses: []*driven.MessageResponse{textResponse("ok")}}
	gen := NewGenerator(llm, 0)

	_, err := gen.GenerateResponse(context.Background(), "question", "", nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, llm.requests[0].System, "Previous conversation")
}

func TestGenerator_NilModelFails(t *testing.T) {
	gen := NewGenerator(nil, 0)

	_, err := gen.GenerateResponse(context.Background(), "question", "", nil, nil)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGenerator_ToolUseWithoutRegistryReturnsText(t *testing.T) {
	llm := &fakeLLM{responses: []*driven.MessageResponse{
		{
			Content: []driven.ContentBlock{
				{Type: driven.BlockText, Text: "cannot execute"},
				{Type: driven.BlockToolUse, ID: "call-1", Name: "lookup"},
			},
			StopReason: driven.StopToolUse,
		},
	}}
	gen := NewGenerator(llm, 0)

	text, err := gen.GenerateResponse(context.Background(), "q", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "cannot execute", text)
	assert.Len(t, llm.requests, 1)
}

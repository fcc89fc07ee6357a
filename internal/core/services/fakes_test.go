package services

import (
	"context"

	"github.com/studium-labs/studium-cli/internal/core/domain"
	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
)

// fakeEmbedder returns preset vectors per exact text, falling back to a
// zero vector so unrelated texts tie on distance.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) set(text string, vector []float32) *fakeEmbedder {
	f.vectors[text] = vector
	return f
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return 3 }
func (f *fakeEmbedder) ModelName() string            { return "fake-embedder" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeLLM replays scripted responses and records every request.
type fakeLLM struct {
	responses []*driven.MessageResponse
	requests  []driven.MessageRequest
	err       error
}

func (f *fakeLLM) Messages(_ context.Context, req driven.MessageRequest) (*driven.MessageResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.requests) > len(f.responses) {
		return &driven.MessageResponse{
			Content:    []driven.ContentBlock{{Type: driven.BlockText, Text: "out of script"}},
			StopReason: driven.StopEndTurn,
		}, nil
	}
	return f.responses[len(f.requests)-1], nil
}

func (f *fakeLLM) ModelName() string            { return "fake-model" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

func textResponse(text string) *driven.MessageResponse {
	return &driven.MessageResponse{
		Content:    []driven.ContentBlock{{Type: driven.BlockText, Text: text}},
		StopReason: driven.StopEndTurn,
	}
}

func toolUseResponse(id, name string, input map[string]any) *driven.MessageResponse {
	return &driven.MessageResponse{
		Content: []driven.ContentBlock{
			{Type: driven.BlockToolUse, ID: id, Name: name, Input: input},
		},
		StopReason: driven.StopToolUse,
	}
}

// staticTool returns fixed output, recording the args it was called with.
type staticTool struct {
	name    string
	text    string
	sources []domain.Source
	gotArgs map[string]any
}

func (t *staticTool) Definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        t.name,
		Description: "static test tool",
		InputSchema: driven.ToolSchema{Type: "object"},
	}
}

func (t *staticTool) Execute(_ context.Context, args map[string]any) (string, []domain.Source) {
	t.gotArgs = args
	return t.text, t.sources
}

func intPtr(n int) *int {
	return &n
}

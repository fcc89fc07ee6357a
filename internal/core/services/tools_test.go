package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studium-labs/studium-cli/internal/core/domain"
)

func searchToolStore(t *testing.T) *ChunkStore {
	t.Helper()

	embedder := newFakeEmbedder().
		set("Intro to ML", []float32{1, 0, 0}).
		set("gradient descent explained", []float32{1, 0, 0}).
		set("overfitting and regularisation", []float32{0, 1, 0}).
		set("gradient", []float32{0.9, 0, 0})
	store := newTestStore(embedder, ChunkStoreConfig{MaxResults: 5})
	ctx := context.Background()

	require.NoError(t, store.AddCourseMetadata(ctx, mlCourse()))
	require.NoError(t, store.AddCourseContent(ctx, []domain.Chunk{
		{Content: "gradient descent explained", CourseTitle: "Intro to ML", LessonNumber: intPtr(1), Index: 0},
		{Content: "overfitting and regularisation", CourseTitle: "Intro to ML", LessonNumber: intPtr(2), Index: 1},
	}))
	return store
}

func TestSearchTool_FormatsResultsWithHeaders(t *testing.T) {
	tool := NewSearchTool(searchToolStore(t))

	text, sources := tool.Execute(context.Background(), map[string]any{
		"query":       "gradient",
		"course_name": "Intro to ML",
	})

	assert.Contains(t, text, "[Intro to ML - Lesson 1]\ngradient descent explained")
	assert.Contains(t, text, "[Intro to ML - Lesson 2]\noverfitting and regularisation")
	assert.Contains(t, text, "\n\n")

	require.Len(t, sources, 2)
	assert.Equal(t, "Intro to ML - Lesson 1", sources[0].Text)
	assert.Equal(t, "https://example.com/ml/1", sources[0].Link)
}

func TestSearchTool_LessonNumberAsFloat(t *testing.T) {
	// Model-supplied JSON arguments decode numbers as float64.
	tool := NewSearchTool(searchToolStore(t))

	text, _ := tool.Execute(context.Background(), map[string]any{
		"query":         "overfitting",
		"course_name":   "Intro to ML",
		"lesson_number": float64(2),
	})

	assert.Contains(t, text, "[Intro to ML - Lesson 2]")
	assert.NotContains(t, text, "Lesson 1")
}

func TestSearchTool_EmptyResultMessages(t *testing.T) {
	embedder := newFakeEmbedder().set("Intro to ML", []float32{1, 0, 0})
	store := newTestStore(embedder, ChunkStoreConfig{MaxResults: 5})
	require.NoError(t, store.AddCourseMetadata(context.Background(), mlCourse()))
	tool := NewSearchTool(store)
	ctx := context.Background()

	text, sources := tool.Execute(ctx, map[string]any{"query": "anything"})
	assert.Equal(t, "No relevant content found.", text)
	assert.Empty(t, sources)

	text, _ = tool.Execute(ctx, map[string]any{
		"query":       "anything",
		"course_name": "Intro to ML",
	})
	assert.Equal(t, "No relevant content found in course 'Intro to ML'.", text)

	text, _ = tool.Execute(ctx, map[string]any{
		"query":         "anything",
		"course_name":   "Intro to ML",
		"lesson_number": 3,
	})
	assert.Equal(t, "No relevant content found in course 'Intro to ML' in lesson 3.", text)
}

func TestSearchTool_UnknownCourse(t *testing.T) {
	store := newTestStore(newFakeEmbedder(), ChunkStoreConfig{MaxResults: 5})
	tool := NewSearchTool(store)

	text, sources := tool.Execute(context.Background(), map[string]any{
		"query":       "anything",
		"course_name": "Nonexistent",
	})
	assert.Equal(t, "No course found matching 'Nonexistent'", text)
	assert.Empty(t, sources)
}

func TestOutlineTool_RendersOutline(t *testing.T) {
	embedder := newFakeEmbedder().set("Intro to ML", []float32{1, 0, 0})
	store := newTestStore(embedder, ChunkStoreConfig{MaxResults: 5})
	require.NoError(t, store.AddCourseMetadata(context.Background(), mlCourse()))
	tool := NewOutlineTool(store)

	text, sources := tool.Execute(context.Background(), map[string]any{
		"course_name": "Intro to ML",
	})

	assert.Contains(t, text, "Course: Intro to ML")
	assert.Contains(t, text, "Course Link: https://example.com/ml")
	assert.Contains(t, text, "Instructor: Dr. Jane Smith")
	assert.Contains(t, text, "Lessons (2 total):")
	assert.Contains(t, text, "Lesson 1: What is Machine Learning?")
	assert.Contains(t, text, "Lesson 2: Supervised Learning")

	require.Len(t, sources, 1)
	assert.Equal(t, "Intro to ML", sources[0].Text)
	assert.Equal(t, "https://example.com/ml", sources[0].Link)
}

func TestOutlineTool_UnknownCourse(t *testing.T) {
	store := newTestStore(newFakeEmbedder(), ChunkStoreConfig{MaxResults: 5})
	tool := NewOutlineTool(store)

	text, sources := tool.Execute(context.Background(), map[string]any{
		"course_name": "Nonexistent",
	})
	assert.Equal(t, "No course found matching 'Nonexistent'", text)
	assert.Empty(t, sources)
}

func TestToolRegistry_UnknownToolSoftFails(t *testing.T) {
	registry := NewToolRegistry()

	result := registry.Execute(context.Background(), "frobnicate", nil)
	assert.Equal(t, "Tool 'frobnicate' not found", result)
}

func TestToolRegistry_DefinitionsInRegistrationOrder(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(&staticTool{name: "beta"})
	registry.Register(&staticTool{name: "alpha"})

	defs := registry.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "beta", defs[0].Name)
	assert.Equal(t, "alpha", defs[1].Name)
}

func TestToolRegistry_LastWinsOnDuplicateName(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(&staticTool{name: "dup", text: "first"})
	registry.Register(&staticTool{name: "dup", text: "second"})

	assert.Len(t, registry.Definitions(), 1)
	assert.Equal(t, "second", registry.Execute(context.Background(), "dup", nil))
}

func TestToolRegistry_SourceAccumulationAndReset(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(&staticTool{
		name:    "a",
		text:    "a result",
		sources: []domain.Source{{Text: "Course A - Lesson 1", Link: "https://a.example/1"}},
	})
	registry.Register(&staticTool{
		name:    "b",
		text:    "b result",
		sources: []domain.Source{{Text: "Course B"}},
	})
	ctx := context.Background()

	registry.Execute(ctx, "a", nil)
	registry.Execute(ctx, "b", nil)

	sources := registry.LastSources()
	require.Len(t, sources, 2)
	assert.Equal(t, "Course A - Lesson 1", sources[0].Text)
	assert.Equal(t, "Course B", sources[1].Text)

	registry.ResetSources()
	assert.Empty(t, registry.LastSources())
}

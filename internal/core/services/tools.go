package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/studium-labs/studium-cli/internal/core/domain"
	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
	"github.com/studium-labs/studium-cli/internal/logger"
)

// Tool names offered to the model.
const (
	ToolSearchCourseContent = "search_course_content"
	ToolGetCourseOutline    = "get_course_outline"
)

// Tool is one capability the model can invoke. Execute returns the text
// fed back to the model together with the provenance of every chunk it
// surfaced; there is no hidden per-tool state.
type Tool interface {
	// Definition returns the schema offered to the model.
	Definition() driven.ToolDefinition

	// Execute runs the tool with the model-supplied arguments.
	Execute(ctx context.Context, args map[string]any) (string, []domain.Source)
}

// SearchTool searches course content with smart course-name matching.
type SearchTool struct {
	store *ChunkStore
}

// NewSearchTool creates the course content search tool.
func NewSearchTool(store *ChunkStore) *SearchTool {
	return &SearchTool{store: store}
}

// Definition returns the search_course_content schema.
func (t *SearchTool) Definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        ToolSearchCourseContent,
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: driven.ToolSchema{
			Type: "object",
			Properties: map[string]driven.ToolProperty{
				"query": {
					Type:        "string",
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": {
					Type:        "integer",
					Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Execute runs the search and formats the matched chunks into a
// citation-annotated block: each result gets a bracketed header naming
// the course (and lesson when present) followed by the chunk text.
func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (string, []domain.Source) {
	query, _ := args["query"].(string)
	courseName, _ := args["course_name"].(string)
	var lessonNumber *int
	if n, ok := toInt(args["lesson_number"]); ok {
		lessonNumber = &n
	}

	results := t.store.Search(ctx, query, courseName, lessonNumber, 0)

	if results.Err != "" {
		return results.Err, nil
	}
	if results.IsEmpty() {
		msg := "No relevant content found"
		if courseName != "" {
			msg += fmt.Sprintf(" in course '%s'", courseName)
		}
		if lessonNumber != nil {
			msg += fmt.Sprintf(" in lesson %d", *lessonNumber)
		}
		return msg + ".", nil
	}

	blocks := make([]string, 0, len(results.Documents))
	sources := make([]domain.Source, 0, len(results.Documents))
	for i, doc := range results.Documents {
		meta := results.Metadata[i]

		header := fmt.Sprintf("[%s]", meta.CourseTitle)
		sourceText := meta.CourseTitle
		var link string
		if meta.LessonNumber != nil {
			header = fmt.Sprintf("[%s - Lesson %d]", meta.CourseTitle, *meta.LessonNumber)
			sourceText = fmt.Sprintf("%s - Lesson %d", meta.CourseTitle, *meta.LessonNumber)
			link, _ = t.store.LessonLink(ctx, meta.CourseTitle, *meta.LessonNumber)
		} else {
			link, _ = t.store.CourseLink(ctx, meta.CourseTitle)
		}

		blocks = append(blocks, header+"\n"+doc)
		sources = append(sources, domain.Source{Text: sourceText, Link: link})
	}

	return strings.Join(blocks, "\n\n"), sources
}

// OutlineTool returns a course's full outline: title, link, instructor
// and the ordered lesson list.
type OutlineTool struct {
	store *ChunkStore
}

// NewOutlineTool creates the course outline tool.
func NewOutlineTool(store *ChunkStore) *OutlineTool {
	return &OutlineTool{store: store}
}

// Definition returns the get_course_outline schema.
func (t *OutlineTool) Definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        ToolGetCourseOutline,
		Description: "Get the complete outline of a course: title, link, instructor and full lesson list",
		InputSchema: driven.ToolSchema{
			Type: "object",
			Properties: map[string]driven.ToolProperty{
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work)",
				},
			},
			Required: []string{"course_name"},
		},
	}
}

// Execute resolves the course name and renders the outline as flat text.
func (t *OutlineTool) Execute(ctx context.Context, args map[string]any) (string, []domain.Source) {
	courseName, _ := args["course_name"].(string)

	title, ok := t.store.Resolver().ResolveCourseTitle(ctx, courseName)
	if !ok {
		return fmt.Sprintf("No course found matching '%s'", courseName), nil
	}

	outline, err := t.store.CourseOutline(ctx, title)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("No course found matching '%s'", courseName), nil
		}
		return fmt.Sprintf("Outline error: %v", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", outline.CourseTitle)
	if outline.CourseLink != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", outline.CourseLink)
	}
	if outline.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", outline.Instructor)
	}
	fmt.Fprintf(&b, "\nLessons (%d total):\n", len(outline.Lessons))
	for _, l := range outline.Lessons {
		fmt.Fprintf(&b, "Lesson %d: %s\n", l.Number, l.Title)
	}

	source := domain.Source{Text: outline.CourseTitle, Link: outline.CourseLink}
	return strings.TrimRight(b.String(), "\n"), []domain.Source{source}
}

// ToolRegistry maps tool names to capabilities. It supplies tool schemas
// to the generator, dispatches execution by name, and aggregates the
// provenance of whichever tools ran during the current turn.
//
// Dispatch is a closed interface table resolved at registration time;
// names are never matched by reflection.
type ToolRegistry struct {
	mu          sync.Mutex
	order       []string
	tools       map[string]Tool
	lastSources []domain.Source
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool. Re-registering a name overwrites the previous
// tool; last registration wins.
func (r *ToolRegistry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Definitions returns every registered tool schema in registration order.
func (r *ToolRegistry) Definitions() []driven.ToolDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	defs := make([]driven.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches a tool call by name and records the sources it
// surfaced. An unknown name yields a soft-fail string, not an error: the
// message is surfaced directly to the model as a tool result.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]any) string {
	r.mu.Lock()
	tool, ok := r.tools[name]
	r.mu.Unlock()

	if !ok {
		logger.Warn("Tool %q not found", name)
		return fmt.Sprintf("Tool '%s' not found", name)
	}

	text, sources := tool.Execute(ctx, args)

	r.mu.Lock()
	r.lastSources = append(r.lastSources, sources...)
	r.mu.Unlock()

	return text
}

// LastSources returns the provenance accumulated since the last reset,
// in execution order.
func (r *ToolRegistry) LastSources() []domain.Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Source, len(r.lastSources))
	copy(out, r.lastSources)
	return out
}

// ResetSources clears the per-turn source buffer. The facade calls this
// once per completed turn regardless of whether a tool ran.
func (r *ToolRegistry) ResetSources() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSources = nil
}

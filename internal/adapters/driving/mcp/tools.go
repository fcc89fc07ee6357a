package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/studium-labs/studium-cli/internal/core/services"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query     string `json:"query" jsonschema:"the question to answer from the course materials"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier for conversation continuity (omit to start a new session)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string         `json:"answer"`
	Sources   []SourceOutput `json:"sources,omitempty"`
	SessionID string         `json:"session_id"`
}

// SourceOutput is one provenance reference backing an answer.
type SourceOutput struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// SearchInput is the input schema for the content search tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema:"what to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema:"course title to filter by (partial names match)"`
	LessonNumber int    `json:"lesson_number,omitempty" jsonschema:"specific lesson number to filter by"`
}

// SearchOutput is the output schema for the content search tool.
type SearchOutput struct {
	Result string `json:"result"`
}

// OutlineInput is the input schema for the course outline tool.
type OutlineInput struct {
	CourseName string `json:"course_name" jsonschema:"course title (partial names match)"`
}

// OutlineOutput is the output schema for the course outline tool.
type OutlineOutput struct {
	Outline string `json:"outline"`
}

// StatsInput is the input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed course materials",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report how many courses are indexed and their titles",
	}, s.handleStats)

	if s.ports.Tools == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        services.ToolSearchCourseContent,
		Description: "Search course materials directly, without model-generated answers",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        services.ToolGetCourseOutline,
		Description: "Get a course's link, instructor and complete lesson list",
	}, s.handleOutline)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Assistant.Answer(ctx, input.Query, input.SessionID)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    answer.Text,
		SessionID: answer.SessionID,
	}
	for _, src := range answer.Sources {
		output.Sources = append(output.Sources, SourceOutput{
			Text: src.Text,
			Link: src.Link,
		})
	}
	return nil, output, nil
}

// handleSearch handles the content search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	args := map[string]any{"query": input.Query}
	if input.CourseName != "" {
		args["course_name"] = input.CourseName
	}
	if input.LessonNumber > 0 {
		args["lesson_number"] = input.LessonNumber
	}

	result := s.ports.Tools.Execute(ctx, services.ToolSearchCourseContent, args)
	return nil, SearchOutput{Result: result}, nil
}

// handleOutline handles the course outline tool invocation.
func (s *Server) handleOutline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OutlineInput,
) (*mcp.CallToolResult, OutlineOutput, error) {
	args := map[string]any{"course_name": input.CourseName}
	outline := s.ports.Tools.Execute(ctx, services.ToolGetCourseOutline, args)
	return nil, OutlineOutput{Outline: outline}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	analytics, err := s.ports.Assistant.Analytics(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{
		TotalCourses: analytics.TotalCourses,
		CourseTitles: analytics.CourseTitles,
	}, nil
}

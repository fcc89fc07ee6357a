package driven

import "context"

// LLMService provides tool-capable chat completion.
//
// A response is either terminal text or one or more tool-call requests;
// the stop reason distinguishes the two cases.
type LLMService interface {
	// Messages sends one request to the model and returns its response.
	Messages(ctx context.Context, req MessageRequest) (*MessageResponse, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Stop reasons returned by the model.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// Content block types.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// MessageRequest is one model call: system instructions, conversation so
// far, and the tool schemas the model may invoke.
type MessageRequest struct {
	// System is the system prompt.
	System string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// Tools lists the capabilities offered to the model. Empty means the
	// model must answer directly.
	Tools []ToolDefinition

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens bounds the generated output.
	MaxTokens int
}

// MessageResponse is the model's reply.
type MessageResponse struct {
	// Content holds the response blocks in order.
	Content []ContentBlock

	// StopReason is StopEndTurn for terminal text or StopToolUse when the
	// model requests tool execution.
	StopReason string
}

// Text concatenates the text blocks of the response.
func (r *MessageResponse) Text() string {
	var out string
	for _, block := range r.Content {
		if block.Type == BlockText {
			out += block.Text
		}
	}
	return out
}

// ToolUses returns the tool-call requests in the response, in order.
func (r *MessageResponse) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, block := range r.Content {
		if block.Type == BlockToolUse {
			uses = append(uses, block)
		}
	}
	return uses
}

// Message is a single conversation turn.
type Message struct {
	// Role is "user" or "assistant".
	Role string

	// Content holds the turn's blocks.
	Content []ContentBlock
}

// TextMessage builds a plain-text message.
func TextMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: []ContentBlock{{Type: BlockText, Text: text}},
	}
}

// ContentBlock is one unit of message content: plain text, a tool-call
// request from the model, or a tool result fed back to it.
type ContentBlock struct {
	// Type is BlockText, BlockToolUse or BlockToolResult.
	Type string

	// Text is set for text blocks.
	Text string

	// ID is the call identifier of a tool_use block.
	ID string

	// Name is the requested tool of a tool_use block.
	Name string

	// Input holds the structured arguments of a tool_use block.
	Input map[string]any

	// ToolUseID links a tool_result block to its tool_use request.
	ToolUseID string

	// Content is the result text of a tool_result block.
	Content string
}

// ToolDefinition describes one capability offered to the model.
// It is consumed by the model, not by the core's own dispatch.
type ToolDefinition struct {
	// Name uniquely identifies the tool.
	Name string

	// Description tells the model when to use the tool.
	Description string

	// InputSchema is the JSON-schema description of the arguments.
	InputSchema ToolSchema
}

// ToolSchema is a JSON-schema object describing tool parameters.
type ToolSchema struct {
	Type       string
	Properties map[string]ToolProperty
	Required   []string
}

// ToolProperty describes one tool parameter.
type ToolProperty struct {
	Type        string
	Description string
}

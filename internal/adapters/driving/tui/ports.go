package tui

import (
	"errors"

	"github.com/studium-labs/studium-cli/internal/core/ports/driving"
)

// ErrMissingAssistantService is returned when the assistant service is not provided.
var ErrMissingAssistantService = errors.New("tui: assistant service is required")

// Ports aggregates the driving interfaces required by the chat TUI.
type Ports struct {
	// Assistant answers questions about the indexed courses.
	Assistant driving.AssistantService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}

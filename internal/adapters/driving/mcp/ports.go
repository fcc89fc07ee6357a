package mcp

import (
	"github.com/studium-labs/studium-cli/internal/core/ports/driving"
	"github.com/studium-labs/studium-cli/internal/core/services"
)

// Ports aggregates the driving interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant answers questions about the indexed courses.
	Assistant driving.AssistantService

	// Tools exposes the retrieval tools directly, bypassing the model.
	Tools *services.ToolRegistry
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	// Tools is optional; without it only the ask and stats tools register.
	return nil
}

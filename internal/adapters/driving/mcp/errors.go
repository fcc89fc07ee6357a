// Package mcp provides an MCP (Model Context Protocol) server adapter for Studium.
// It lets AI assistants query indexed course materials over JSON-RPC.
package mcp

import "errors"

// ErrMissingAssistantService is returned when the assistant service is not provided.
var ErrMissingAssistantService = errors.New("mcp: assistant service is required")

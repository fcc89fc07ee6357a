package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/studium-labs/studium-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive chat UI",
	Long: `Launch the interactive terminal chat for the indexed courses.

Each question keeps its conversation context, and answers show the
course and lesson sources they were built from.

Controls:
  Enter - Ask
  Esc   - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Panic recovery so terminal state survives UI bugs
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat UI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	app, err := tui.NewApp(&tui.Ports{Assistant: assistantService})
	if err != nil {
		return err
	}

	program := tea.NewProgram(app.WithContext(cmd.Context()), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studium-labs/studium-cli/internal/core/ports/driving"
)

var (
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed courses",
	Long: `Answers one question using retrieval-augmented generation over the
indexed course materials. Pass --session to continue a previous
conversation; the session ID is printed with every answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session ID for conversation continuity")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	answer, err := assistantService.Answer(context.Background(), args[0], askSession)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputAnswer(cmd, answer)
}

func outputAnswer(cmd *cobra.Command, answer driving.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range answer.Sources {
			if src.Link != "" {
				cmd.Printf("  - %s (%s)\n", src.Text, src.Link)
			} else {
				cmd.Printf("  - %s\n", src.Text)
			}
		}
	}

	cmd.Println()
	cmd.Printf("Session: %s\n", answer.SessionID)
	return nil
}

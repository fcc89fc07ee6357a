package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API keys",
	Long: `Store and inspect the API keys used by the model providers.

Keys are kept in the studium config file with restricted permissions.
Environment variables (ANTHROPIC_API_KEY, OPENAI_API_KEY) take effect
without any auth setup and are never written to disk.

Examples:
  studium auth set anthropic
  studium auth set openai
  studium auth show`,
}

var authSetCmd = &cobra.Command{
	Use:   "set [provider]",
	Short: "Store an API key for a provider",
	Long:  `Prompts for the key without echoing it to the terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthSet,
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configured keys, masked",
	RunE:  runAuthShow,
}

// providerKeys maps provider names to their config keys.
var providerKeys = map[string]string{
	"anthropic": "anthropic.api_key",
	"openai":    "openai.api_key",
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authShowCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	provider := strings.ToLower(args[0])
	configKey, ok := providerKeys[provider]
	if !ok {
		return fmt.Errorf("unknown provider %q (expected anthropic or openai)", provider)
	}

	cmd.Printf("Enter %s API key: ", provider)
	key := readSecret()
	cmd.Println()

	if key == "" {
		return errors.New("no key entered")
	}
	if err := configStore.Set(configKey, key); err != nil {
		return fmt.Errorf("saving key: %w", err)
	}

	cmd.Printf("Saved %s key (%s)\n", provider, maskAPIKey(key))
	return nil
}

func runAuthShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	for _, provider := range []string{"anthropic", "openai"} {
		key := configStore.GetString(providerKeys[provider])
		if key == "" {
			cmd.Printf("%s: not set\n", provider)
			continue
		}
		cmd.Printf("%s: %s\n", provider, maskAPIKey(key))
	}
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

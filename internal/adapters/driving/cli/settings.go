package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change configuration",
	Long: `Read and write configuration values stored in the studium config file.

Keys use dot notation, for example:
  studium settings set embedding.provider openai
  studium settings set search.max_results 5
  studium settings get anthropic.model`,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured values",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// secretKeys are masked in list and get output.
var secretKeys = map[string]bool{
	"anthropic.api_key": true,
	"openai.api_key":    true,
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := knownSettingKeys()
	found := false
	for _, key := range keys {
		val, ok := configStore.Get(key)
		if !ok {
			continue
		}
		found = true
		if secretKeys[key] {
			val = maskAPIKey(fmt.Sprint(val))
		}
		cmd.Printf("%s = %v\n", key, val)
	}
	if !found {
		cmd.Printf("No settings configured. Config file: %s\n", configStore.Path())
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	val, ok := configStore.Get(key)
	if !ok {
		return fmt.Errorf("setting %q is not set", key)
	}
	if secretKeys[key] {
		val = maskAPIKey(fmt.Sprint(val))
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseSettingValue(raw)); err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

// parseSettingValue keeps numeric and boolean values typed in the TOML
// file instead of storing everything as strings.
func parseSettingValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// knownSettingKeys returns the recognised keys in stable order.
func knownSettingKeys() []string {
	return []string{
		"anthropic.api_key",
		"anthropic.model",
		"anthropic.max_tokens",
		"anthropic.timeout_seconds",
		"openai.api_key",
		"ollama.base_url",
		"embedding.provider",
		"embedding.model",
		"embedding.dimensions",
		"search.max_results",
		"search.resolve_max_distance",
		"session.max_history",
		"session.max_sessions",
		"ingest.chunk_size",
		"ingest.overlap",
		"ingest.batch_size",
		"ingest.batches_per_second",
	}
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

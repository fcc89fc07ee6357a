// Package cli provides the cobra command-line interface for Studium.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/studium-labs/studium-cli/internal/adapters/driven/config/file"
	"github.com/studium-labs/studium-cli/internal/adapters/driven/embedding/ollama"
	"github.com/studium-labs/studium-cli/internal/adapters/driven/embedding/openai"
	"github.com/studium-labs/studium-cli/internal/adapters/driven/llm/anthropic"
	"github.com/studium-labs/studium-cli/internal/adapters/driven/storage/memory"
	sqlitevec "github.com/studium-labs/studium-cli/internal/adapters/driven/vectorindex/sqlite"
	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
	"github.com/studium-labs/studium-cli/internal/core/ports/driving"
	"github.com/studium-labs/studium-cli/internal/core/services"
	"github.com/studium-labs/studium-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0-dev"

// Vector collection names within the index database.
const (
	catalogCollection = "course_catalog"
	contentCollection = "course_content"
)

// Services the commands run against. Bootstrapped on first use; tests
// inject fakes and set bootstrapped directly.
var (
	assistantService driving.AssistantService
	ingestService    driving.IngestService
	chunkStore       *services.ChunkStore
	toolRegistry     *services.ToolRegistry
	configStore      driven.ConfigStore
	vectorStore      *sqlitevec.Store

	bootstrapped bool
)

// Persistent flags.
var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "studium",
	Short: "Course materials search and Q&A from the terminal",
	Long: `Studium indexes course scripts into a local vector store and answers
questions about them using retrieval-augmented generation.

Ingest a folder of course documents, then ask questions directly,
chat interactively, or expose the index to AI assistants over MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if cmd.Name() == "version" {
			return nil
		}
		return initServices()
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if vectorStore != nil {
			return vectorStore.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.studium)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.studium/data)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices wires the real adapters into the core services.
func initServices() error {
	if bootstrapped {
		return nil
	}

	cfg, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	store, err := sqlitevec.NewStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	vectorStore = store

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	chunkStore = services.NewChunkStore(
		store.Collection(catalogCollection),
		store.Collection(contentCollection),
		embedder,
		services.ChunkStoreConfig{
			MaxResults:         cfg.GetInt("search.max_results"),
			ResolveMaxDistance: cfg.GetFloat("search.resolve_max_distance"),
		},
	)

	generator := services.NewGenerator(buildLLM(cfg), cfg.GetInt("anthropic.max_tokens"))
	sessions := memory.NewSessionStore(
		cfg.GetInt("session.max_history"),
		cfg.GetInt("session.max_sessions"),
	)

	assistant := services.NewAssistant(chunkStore, generator, sessions)
	assistantService = assistant
	toolRegistry = assistant.Registry()

	ingestService = services.NewIngestor(chunkStore, services.IngestConfig{
		ChunkSize:        cfg.GetInt("ingest.chunk_size"),
		Overlap:          cfg.GetInt("ingest.overlap"),
		BatchSize:        cfg.GetInt("ingest.batch_size"),
		BatchesPerSecond: cfg.GetFloat("ingest.batches_per_second"),
	})

	bootstrapped = true
	return nil
}

// buildEmbedder constructs the configured embedding service.
// Ollama is the default so a fresh install works without API keys.
func buildEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	switch provider := cfg.GetString("embedding.provider"); provider {
	case "openai":
		apiKey := cfg.GetString("openai.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     apiKey,
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
		if err != nil {
			return nil, fmt.Errorf("configuring openai embeddings: %w", err)
		}
		return svc, nil
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.GetString("ollama.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildLLM constructs the Anthropic client when a key is configured.
// Without a key the generator reports the model as unavailable at use,
// which keeps key-free commands like ingest working.
func buildLLM(cfg driven.ConfigStore) driven.LLMService {
	apiKey := cfg.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil
	}

	svc, err := anthropic.NewLLMService(anthropic.Config{
		APIKey:  apiKey,
		Model:   cfg.GetString("anthropic.model"),
		Timeout: time.Duration(cfg.GetInt("anthropic.timeout_seconds")) * time.Second,
	})
	if err != nil {
		logger.Warn("Anthropic client unavailable: %v", err)
		return nil
	}
	return svc
}

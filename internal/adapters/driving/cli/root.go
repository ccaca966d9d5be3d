// Package cli provides the komenta command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/komenta/internal/adapters/driven/config/file"
	"github.com/custodia-labs/komenta/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/komenta/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/komenta/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/komenta/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/komenta/internal/connectors/scrapecreators"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
	"github.com/custodia-labs/komenta/internal/core/ports/driving"
	"github.com/custodia-labs/komenta/internal/core/services"
	"github.com/custodia-labs/komenta/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Wired services, built lazily by initServices.
var (
	configStore     *file.Store
	analysisService driving.AnalysisService
	historyService  driving.HistoryService
	summaryService  driving.SummaryService

	closers []io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "komenta",
	Short: "TikTok comment analytics",
	Long: `Komenta fetches TikTok comments through a scraping API, flags likely
bot accounts, classifies sentiment, and aggregates the results.

Queries can target a username's recent videos, a single video URL, or a
keyword search.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.komenta)")
}

// Execute runs the CLI and releases wired resources afterwards.
func Execute() error {
	defer closeAll()
	return rootCmd.Execute()
}

// initServices wires the pipeline from configuration. Safe to call from
// multiple commands; only the first call builds anything.
func initServices() error {
	if analysisService != nil {
		return nil
	}

	store, err := file.NewStore(configDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = store
	cfg := store.Config()

	if cfg.Upstream.APIKey == "" {
		return errors.New("upstream API key is not set; add it to " + store.Path() +
			" under [upstream] or export " + file.EnvAPIKey)
	}

	source, err := scrapecreators.NewClient(scrapecreators.Config{
		APIKey:  cfg.Upstream.APIKey,
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("creating upstream client: %w", err)
	}
	closers = append(closers, source)

	history, err := buildHistoryStore(cfg)
	if err != nil {
		return err
	}
	if history != nil {
		closers = append(closers, history)
	}

	analysisService = services.NewAnalysisService(source, history, services.AnalysisConfig{
		TargetCount: cfg.Budget.TargetCount,
		MaxPages:    cfg.Budget.MaxPages,
		PageDelay:   time.Duration(cfg.Budget.PageDelayMS) * time.Millisecond,
		VideoDelay:  time.Duration(cfg.Budget.VideoDelayMS) * time.Millisecond,
	})
	if history != nil {
		historyService = services.NewHistoryService(history)
	}

	primary, fallback := buildLLMBackends(cfg)
	summaryService = services.NewSummaryService(primary, fallback)

	return nil
}

// buildHistoryStore selects the persistence backend.
func buildHistoryStore(cfg file.Config) (driven.HistoryStore, error) {
	switch cfg.Storage.Backend {
	case "", "sqlite":
		store, err := sqlite.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening history store: %w", err)
		}
		return store, nil
	case "memory":
		return memory.NewHistoryStore(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// buildLLMBackends returns the primary and fallback model chain.
// Ollama needs no credentials, so it is always available as a backend;
// OpenAI joins the chain only when a key is configured.
func buildLLMBackends(cfg file.Config) (primary, fallback driven.LLMService) {
	ollamaSvc := ollama.NewLLMService(ollama.LLMConfig{
		BaseURL: cfg.LLM.OllamaBaseURL,
		Model:   cfg.LLM.OllamaModel,
	})
	closers = append(closers, ollamaSvc)

	var openaiSvc driven.LLMService
	if cfg.LLM.OpenAIAPIKey != "" {
		svc, err := openai.NewLLMService(openai.LLMConfig{
			APIKey: cfg.LLM.OpenAIAPIKey,
			Model:  cfg.LLM.OpenAIModel,
		})
		if err != nil {
			logger.Warn("openai backend disabled: %v", err)
		} else {
			openaiSvc = svc
			closers = append(closers, svc)
		}
	}

	if cfg.LLM.Provider == "openai" && openaiSvc != nil {
		return openaiSvc, ollamaSvc
	}
	return ollamaSvc, openaiSvc
}

// closeAll releases wired resources in reverse order.
func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("closing resource: %v", err)
		}
	}
	closers = nil
}

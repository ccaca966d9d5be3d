package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/komenta/internal/logger"
)

// Environment variables that override file values.
const (
	EnvAPIKey       = "KOMENTA_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// configFileName is the TOML file read from the config directory.
const configFileName = "komenta.toml"

// Config is the full application configuration.
type Config struct {
	Upstream UpstreamConfig `toml:"upstream"`
	Budget   BudgetConfig   `toml:"budget"`
	Server   ServerConfig   `toml:"server"`
	LLM      LLMConfig      `toml:"llm"`
	Storage  StorageConfig  `toml:"storage"`
}

// UpstreamConfig configures the scraping API client.
type UpstreamConfig struct {
	// APIKey authenticates against the upstream API. The KOMENTA_API_KEY
	// environment variable takes precedence over the file value.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the upstream API base URL.
	BaseURL string `toml:"base_url"`

	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// BudgetConfig bounds how much one analysis run may fetch.
type BudgetConfig struct {
	// TargetCount is the number of comments to collect per video.
	TargetCount int `toml:"target_count"`

	// MaxPages caps pagination per video regardless of target.
	MaxPages int `toml:"max_pages"`

	// PageDelayMS is the pause between comment pages, in milliseconds.
	PageDelayMS int `toml:"page_delay_ms"`

	// VideoDelayMS is the pause between videos, in milliseconds.
	VideoDelayMS int `toml:"video_delay_ms"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LLMConfig configures the summary model chain.
type LLMConfig struct {
	// Provider selects the primary backend: "ollama" or "openai".
	// The other configured backend becomes the fallback.
	Provider string `toml:"provider"`

	OllamaBaseURL string `toml:"ollama_base_url"`
	OllamaModel   string `toml:"ollama_model"`

	// OpenAIAPIKey authenticates against OpenAI. The OPENAI_API_KEY
	// environment variable takes precedence over the file value.
	OpenAIAPIKey string `toml:"openai_api_key"`
	OpenAIModel  string `toml:"openai_model"`
}

// StorageConfig configures search history persistence.
type StorageConfig struct {
	// Backend selects the store: "sqlite" (default) or "memory".
	Backend string `toml:"backend"`

	// DataDir is the directory holding the SQLite database.
	DataDir string `toml:"data_dir"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Budget: BudgetConfig{
			TargetCount:  100,
			MaxPages:     20,
			PageDelayMS:  500,
			VideoDelayMS: 1000,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		LLM: LLMConfig{
			Provider: "ollama",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
	}
}

// Store loads and watches the TOML configuration file.
type Store struct {
	mu       sync.RWMutex
	filePath string
	cfg      Config
}

// NewStore creates a config store rooted at configDir.
// If configDir is empty, defaults to ~/.komenta.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".komenta")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &Store{
		filePath: filepath.Join(configDir, configFileName),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Load reads the configuration file, applying defaults and environment
// overrides. A missing file is not an error.
func (s *Store) Load() error {
	cfg := Default()

	data, err := os.ReadFile(s.filePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.Upstream.APIKey = key
	}
	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		cfg.LLM.OpenAIAPIKey = key
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Config returns a snapshot of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}

// Save persists the current configuration to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Write with restricted permissions, the file may hold API keys
	return os.WriteFile(s.filePath, data, 0600)
}

// Watch reloads the configuration when the file changes on disk and
// calls onChange with the new snapshot. It blocks until ctx is done.
// Editors often replace files rather than writing in place, so the
// watch is set on the directory and filtered by name.
func (s *Store) Watch(ctx context.Context, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		return fmt.Errorf("watching config directory: %w", err)
	}

	// Debounce bursts of events from a single save.
	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error: %v", err)

		case <-reload:
			if err := s.Load(); err != nil {
				logger.Warn("config reload failed: %v", err)
				continue
			}
			logger.Info("configuration reloaded from %s", s.filePath)
			if onChange != nil {
				onChange(s.Config())
			}
		}
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the shelfmate configuration. It is built once at startup and
// passed by value into constructors; there is no ambient settings object.
type Config struct {
	// DataDir is the directory holding the SQLite database.
	DataDir string

	OpenAIAPIKey   string
	Model          string
	EmbeddingModel string

	GoogleBooksAPIKey string

	// HTTPAddr is the listen address of the serve subcommand.
	HTTPAddr string

	// RequestTimeoutSec bounds each outbound provider call.
	RequestTimeoutSec int

	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first if present (existing env vars win).
func Load() (Config, error) {
	// godotenv.Load returns an error when the file is missing; a .env file
	// is optional here.
	_ = godotenv.Load()

	cfg := Config{
		DataDir:           os.Getenv("SHELFMATE_DATA_DIR"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		Model:             os.Getenv("OPENAI_MODEL"),
		EmbeddingModel:    os.Getenv("OPENAI_EMBEDDING_MODEL"),
		GoogleBooksAPIKey: os.Getenv("GOOGLE_BOOKS_API_KEY"),
		HTTPAddr:          os.Getenv("SHELFMATE_HTTP_ADDR"),
		LogLevel:          os.Getenv("SHELFMATE_LOG_LEVEL"),
	}

	if v := os.Getenv("SHELFMATE_REQUEST_TIMEOUT_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHELFMATE_REQUEST_TIMEOUT_SEC %q: %w", v, err)
		}
		cfg.RequestTimeoutSec = sec
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.DataDir = filepath.Join(home, ".shelfmate")
	}
	if c.Model == "" {
		c.Model = "gpt-4o"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = "localhost:8372"
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = 60
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks the configuration for correctness. Credentials are not
// required here: commands that need one check at call time.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	return nil
}

// DatabasePath returns the SQLite file path inside the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "shelfmate.db")
}

// EnsureDataDir creates the data directory if missing.
func (c Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", c.DataDir, err)
	}
	return nil
}

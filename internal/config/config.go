// Package config assembles run settings from defaults, a JSON file and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"leadscore/internal/leads"
	"leadscore/internal/sink"
)

const (
	defaultInput  = "data/processed_buyer_leads.json"
	defaultOutDir = "data"
)

// Config holds everything a scoring run needs.
type Config struct {
	Input       string             `json:"input"`
	OutDir      string             `json:"outDir"`
	CSVPath     string             `json:"csv"`
	SQLitePath  string             `json:"sqlite"`
	ProfilePath string             `json:"profile"`
	Table       string             `json:"table"`
	PostgresDSN string             `json:"postgresDsn"`
	Limit       int                `json:"limit"`
	LogLevel    string             `json:"logLevel"`
	Pairs       []leads.ColumnPair `json:"pairs"`
	Targets     leads.Targets      `json:"targets"`
	SkipSQLite  bool               `json:"skipSqlite"`
	SkipProfile bool               `json:"skipProfile"`
}

// Default returns the corn starch run with outputs under data/.
func Default() Config {
	cfg := Config{Input: defaultInput, OutDir: defaultOutDir}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills any unset field.
func (c *Config) ApplyDefaults() {
	if c.Input == "" {
		c.Input = defaultInput
	}
	if c.OutDir == "" {
		c.OutDir = defaultOutDir
	}
	if c.CSVPath == "" {
		c.CSVPath = filepath.Join(c.OutDir, "cleaned_and_scored_buyer_leads.csv")
	}
	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(c.OutDir, "cleaned_and_scored_buyer_leads.sqlite")
	}
	if c.ProfilePath == "" {
		c.ProfilePath = filepath.Join(c.OutDir, "cleaned_and_scored_buyer_leads_profile.md")
	}
	if c.Table == "" {
		c.Table = sink.DefaultTable
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Pairs == nil {
		c.Pairs = append([]leads.ColumnPair(nil), leads.DefaultPairs...)
	}
	def := leads.DefaultTargets()
	if c.Targets.Label == "" {
		c.Targets.Label = def.Label
	}
	if c.Targets.Ingredients == nil {
		c.Targets.Ingredients = def.Ingredients
	}
	if c.Targets.Products == nil {
		c.Targets.Products = def.Products
	}
	if c.Targets.Industries == nil {
		c.Targets.Industries = def.Industries
	}
	if c.Targets.Uses == nil {
		c.Targets.Uses = def.Uses
	}
}

// LoadFile reads a JSON config. A missing file is not an error; the defaults are used.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		cfg.ApplyDefaults()
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadDotEnv loads .env from the working directory or its parents without
// overriding variables that are already set.
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
		return
	}
}

// ApplyEnv overrides fields from LEADS_* environment variables. Output paths
// derived from the old OutDir are re-derived when LEADS_OUT_DIR is set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LEADS_INPUT"); v != "" {
		c.Input = v
	}
	if v := os.Getenv("LEADS_OUT_DIR"); v != "" && v != c.OutDir {
		old := c.OutDir
		c.OutDir = v
		c.CSVPath = rebase(c.CSVPath, old, v)
		c.SQLitePath = rebase(c.SQLitePath, old, v)
		c.ProfilePath = rebase(c.ProfilePath, old, v)
	}
	if v := os.Getenv("LEADS_POSTGRES_DSN"); v != "" {
		c.PostgresDSN = v
	}
	if v := os.Getenv("LEADS_TABLE"); v != "" {
		c.Table = v
	}
	if v := os.Getenv("LEADS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LEADS_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Limit = n
		}
	}
}

func rebase(path, oldDir, newDir string) string {
	if filepath.Dir(path) == filepath.Clean(oldDir) {
		return filepath.Join(newDir, filepath.Base(path))
	}
	return path
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns a text logger on stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.Level()}))
}

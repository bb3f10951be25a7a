package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of an expenso repo.
const FileName = "expenso.yaml"

// Config represents the top-level expenso.yaml configuration.
type Config struct {
	Owner    OwnerConfig  `yaml:"owner"`
	Currency string       `yaml:"currency"`
	Budget   BudgetConfig `yaml:"budget"`
	Import   ImportConfig `yaml:"import"`
	Log      LogConfig    `yaml:"log"`
	Server   ServerConfig `yaml:"server"`
	Git      GitConfig    `yaml:"git"`
}

// OwnerConfig identifies whose expenses the repo tracks.
type OwnerConfig struct {
	Name string `yaml:"name"`
}

// BudgetConfig holds spending limits. Amounts are decimal strings.
type BudgetConfig struct {
	Monthly string `yaml:"monthly,omitempty"`
}

// MonthlyAmount parses Monthly. An empty value means no budget.
func (b BudgetConfig) MonthlyAmount() (decimal.Decimal, error) {
	if strings.TrimSpace(b.Monthly) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(b.Monthly))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing budget.monthly %q: %w", b.Monthly, err)
	}
	return d, nil
}

// ImportConfig controls statement and email imports.
type ImportConfig struct {
	Dedupe bool `yaml:"dedupe"`
	// Source labels transactions read from statements.
	Source string `yaml:"source"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig controls `expenso serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads an expenso.yaml file from disk. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.Budget.MonthlyAmount(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new repo.
func Default(ownerName string) *Config {
	return &Config{
		Owner:    OwnerConfig{Name: ownerName},
		Currency: "INR",
		Import: ImportConfig{
			Dedupe: true,
			Source: "Bank Statement",
		},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Addr: ":8080"},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Expenso",
			AuthorEmail: "expenso@localhost",
		},
	}
}

// Environment variables that override config values.
const (
	EnvRepo     = "EXPENSO_REPO"
	EnvLogLevel = "EXPENSO_LOG_LEVEL"
	EnvAddr     = "EXPENSO_ADDR"
)

// LoadEnv loads variables from the given .env files into the process
// environment without overriding ones already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with EXPENSO_LOG_LEVEL and EXPENSO_ADDR.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
}

// RepoFromEnv returns EXPENSO_REPO, or fallback when unset.
func RepoFromEnv(fallback string) string {
	if v := os.Getenv(EnvRepo); v != "" {
		return v
	}
	return fallback
}

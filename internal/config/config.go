// Package config loads pjournal settings from config.yaml, .env files and
// PJOURNAL_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/pjournal/internal/constants"
)

// Environment variable names.
const (
	EnvDatabase   = "PJOURNAL_DATABASE"
	EnvOwner      = "PJOURNAL_OWNER"
	EnvDebug      = "PJOURNAL_DEBUG"
	EnvAddr       = "PJOURNAL_ADDR"
	EnvJWTSecret  = "PJOURNAL_JWT_SECRET"
	EnvTokenTTL   = "PJOURNAL_TOKEN_TTL"
	EnvSeedNumber = "PJOURNAL_SEED_NUMBERS"
)

type Config struct {
	// Database is a SQLite file path or a PostgreSQL connection string.
	Database string       `yaml:"database"`
	Owner    string       `yaml:"owner"`
	Debug    bool         `yaml:"debug"`
	Editor   EditorConfig `yaml:"editor"`
	Server   ServerConfig `yaml:"server"`
	Chart    ChartConfig  `yaml:"chart"`
	Backup   BackupConfig `yaml:"backup"`
}

type EditorConfig struct {
	// LegacyFieldNames accepts field names up to the older 50 character limit.
	LegacyFieldNames bool `yaml:"legacy_field_names"`
	// SeedNumbers copies committed template numbers into fresh entry drafts.
	SeedNumbers bool `yaml:"seed_numbers"`
}

type ServerConfig struct {
	Addr     string        `yaml:"addr"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	// JWTSecret is normally left empty in favour of the keyring or
	// PJOURNAL_JWT_SECRET.
	JWTSecret string `yaml:"jwt_secret,omitempty"`
}

type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type BackupConfig struct {
	// Auto snapshots the SQLite database before destructive commands.
	Auto   bool `yaml:"auto"`
	Retain int  `yaml:"retain"`
}

func Default() *Config {
	return &Config{
		Database: constants.DefaultConfigPath,
		Owner:    constants.DefaultOwnerID,
		Server: ServerConfig{
			Addr:     constants.DefaultAddr,
			TokenTTL: constants.DefaultTokenTTL,
		},
		Chart:  ChartConfig{Width: 60, Height: 12},
		Backup: BackupConfig{Auto: true, Retain: constants.MaxBackups},
	}
}

// DefaultPath returns the expanded location of config.yaml.
func DefaultPath() string {
	return filepath.Join(ExpandHome(constants.DefaultConfigDir), constants.DefaultConfigFile)
}

// Load reads the YAML file at path, falling back to defaults when it does
// not exist, then applies .env files and environment overrides. A .env in
// the working directory wins over one beside the config file; neither
// overrides variables already set in the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	loadDotEnv(".env", filepath.Join(filepath.Dir(path), ".env"))
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	cfg.Database = ExpandHome(cfg.Database)
	return cfg, cfg.Validate()
}

func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvOwner); v != "" {
		c.Owner = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		c.Debug = b
	}
	if v := os.Getenv(EnvSeedNumber); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSeedNumber, err)
		}
		c.Editor.SeedNumbers = b
	}
	if v := os.Getenv(EnvTokenTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTokenTTL, err)
		}
		c.Server.TokenTTL = d
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database must not be empty")
	}
	if strings.TrimSpace(c.Owner) == "" {
		return fmt.Errorf("owner must not be empty")
	}
	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("server.token_ttl must be positive, got %s", c.Server.TokenTTL)
	}
	if c.Chart.Width < 10 || c.Chart.Height < 3 {
		return fmt.Errorf("chart size %dx%d is too small", c.Chart.Width, c.Chart.Height)
	}
	if c.Backup.Retain < 1 {
		return fmt.Errorf("backup.retain must be at least 1")
	}
	return nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

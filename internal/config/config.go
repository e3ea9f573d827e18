package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains state and log directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Watchlist selects where the list of wanted films comes from.
type Watchlist struct {
	Provider               string `toml:"provider"`
	Username               string `toml:"username"`
	BaseURL                string `toml:"base_url"`
	MaxPages               int    `toml:"max_pages"`
	FetchAlternativeTitles bool   `toml:"fetch_alternative_titles"`
	File                   string `toml:"file"`
}

// Listings selects where the films currently showing come from.
type Listings struct {
	Provider string   `toml:"provider"`
	City     string   `toml:"city"`
	BaseURL  string   `toml:"base_url"`
	File     string   `toml:"file"`
	Methods  []string `toml:"methods"`
}

// HTTP contains outbound request settings shared by the scrapers.
type HTTP struct {
	RequestTimeout int    `toml:"request_timeout"`
	UserAgent      string `toml:"user_agent"`
	AcceptLanguage string `toml:"accept_language"`
	ProxyURL       string `toml:"proxy_url"`
	// RequestsPerSecond paces scraper requests; 0 disables pacing.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Matching contains title matching settings.
type Matching struct {
	Threshold float64 `toml:"threshold"`
	Workers   int     `toml:"workers"`
}

// Notifications contains ntfy, Telegram, and email delivery settings.
type Notifications struct {
	NtfyTopic          string   `toml:"ntfy_topic"`
	RequestTimeout     int      `toml:"request_timeout"`
	NotifyOnEmpty      bool     `toml:"notify_on_empty"`
	Errors             bool     `toml:"errors"`
	DedupWindowSeconds int      `toml:"dedup_window_seconds"`
	TelegramBotToken   string   `toml:"telegram_bot_token"`
	TelegramChatID     string   `toml:"telegram_chat_id"`
	TelegramBaseURL    string   `toml:"telegram_base_url"`
	EmailSMTPHost      string   `toml:"email_smtp_host"`
	EmailSMTPPort      int      `toml:"email_smtp_port"`
	EmailUsername      string   `toml:"email_username"`
	EmailPassword      string   `toml:"email_password"`
	EmailFrom          string   `toml:"email_from"`
	EmailTo            []string `toml:"email_to"`
}

// Schedule controls how often the daemon runs a check.
type Schedule struct {
	IntervalMinutes int  `toml:"interval_minutes"`
	RunOnStart      bool `toml:"run_on_start"`
}

// Cache controls the on-disk page cache.
type Cache struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// Aliases controls the optional localized title lookup.
type Aliases struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for cinewatch.
//
// Configuration sections by subsystem:
//   - Paths: state and log directories
//   - Watchlist: Letterboxd account or local file with wanted films
//   - Listings: ComingSoon city page or local file with current listings
//   - HTTP: scraper timeouts, headers, and proxy
//   - Matching: similarity threshold and worker count
//   - Notifications: ntfy, Telegram, and email delivery
//   - Schedule: daemon interval
//   - Cache: fetched page cache
//   - Aliases: Gemini lookup of localized titles
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Watchlist     Watchlist     `toml:"watchlist"`
	Listings      Listings      `toml:"listings"`
	HTTP          HTTP          `toml:"http"`
	Matching      Matching      `toml:"matching"`
	Notifications Notifications `toml:"notifications"`
	Schedule      Schedule      `toml:"schedule"`
	Cache         Cache         `toml:"cache"`
	Aliases       Aliases       `toml:"aliases"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cinewatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Cache.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.Cache.Path), 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	return nil
}

// LockPath returns the single-instance lock file used by the daemon.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "cinewatch.lock")
}

// PIDPath returns the file the foreground daemon writes its process ID to.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "cinewatch.pid")
}

// RequestTimeout returns the scraper request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.RequestTimeout) * time.Second
}

// CacheTTL returns how long a fetched page stays fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// ScheduleInterval returns the delay between daemon checks.
func (c *Config) ScheduleInterval() time.Duration {
	return time.Duration(c.Schedule.IntervalMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "cinewatch")
	}
	return defaultStateDirFallback
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

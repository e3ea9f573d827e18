package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeWatchlist(); err != nil {
		return err
	}
	if err := c.normalizeListings(); err != nil {
		return err
	}
	c.normalizeHTTP()
	c.normalizeNotifications()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeAliases()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWatchlist() error {
	c.Watchlist.Provider = strings.ToLower(strings.TrimSpace(c.Watchlist.Provider))
	if c.Watchlist.Provider == "" {
		c.Watchlist.Provider = defaultWatchlistProvider
	}
	c.Watchlist.Username = strings.TrimSpace(c.Watchlist.Username)
	if c.Watchlist.Username == "" {
		if value, ok := os.LookupEnv("LETTERBOXD_USERNAME"); ok {
			c.Watchlist.Username = strings.TrimSpace(value)
		}
	}
	c.Watchlist.BaseURL = strings.TrimRight(strings.TrimSpace(c.Watchlist.BaseURL), "/")
	if c.Watchlist.BaseURL == "" {
		c.Watchlist.BaseURL = defaultLetterboxdBaseURL
	}
	if c.Watchlist.MaxPages <= 0 {
		c.Watchlist.MaxPages = defaultWatchlistMaxPages
	}
	var err error
	if c.Watchlist.File, err = expandPath(strings.TrimSpace(c.Watchlist.File)); err != nil {
		return fmt.Errorf("watchlist.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeListings() error {
	c.Listings.Provider = strings.ToLower(strings.TrimSpace(c.Listings.Provider))
	if c.Listings.Provider == "" {
		c.Listings.Provider = defaultListingsProvider
	}
	c.Listings.City = strings.ToLower(strings.Trim(strings.TrimSpace(c.Listings.City), "/"))
	if c.Listings.City == "" {
		c.Listings.City = defaultListingsCity
	}
	c.Listings.BaseURL = strings.TrimRight(strings.TrimSpace(c.Listings.BaseURL), "/")
	if c.Listings.BaseURL == "" {
		c.Listings.BaseURL = defaultComingSoonBaseURL
	}
	var err error
	if c.Listings.File, err = expandPath(strings.TrimSpace(c.Listings.File)); err != nil {
		return fmt.Errorf("listings.file: %w", err)
	}
	if len(c.Listings.Methods) == 0 {
		c.Listings.Methods = AllMethods()
		return nil
	}
	methods := make([]string, 0, len(c.Listings.Methods))
	seen := make(map[string]struct{}, len(c.Listings.Methods))
	for _, method := range c.Listings.Methods {
		normalized := strings.ToLower(strings.TrimSpace(method))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		methods = append(methods, normalized)
	}
	if len(methods) == 0 {
		methods = AllMethods()
	}
	c.Listings.Methods = methods
	return nil
}

func (c *Config) normalizeHTTP() {
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	c.HTTP.AcceptLanguage = strings.TrimSpace(c.HTTP.AcceptLanguage)
	if c.HTTP.AcceptLanguage == "" {
		c.HTTP.AcceptLanguage = defaultAcceptLanguage
	}
	c.HTTP.ProxyURL = strings.TrimSpace(c.HTTP.ProxyURL)
	if c.HTTP.ProxyURL == "" {
		if value, ok := os.LookupEnv("CINEWATCH_PROXY"); ok {
			c.HTTP.ProxyURL = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.TelegramBotToken == "" {
		if value, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok {
			c.Notifications.TelegramBotToken = value
		}
	}
	c.Notifications.TelegramBotToken = strings.TrimSpace(c.Notifications.TelegramBotToken)
	c.Notifications.TelegramChatID = strings.TrimSpace(c.Notifications.TelegramChatID)
	c.Notifications.TelegramBaseURL = strings.TrimRight(strings.TrimSpace(c.Notifications.TelegramBaseURL), "/")
	if c.Notifications.TelegramBaseURL == "" {
		c.Notifications.TelegramBaseURL = defaultTelegramBaseURL
	}
	c.Notifications.EmailSMTPHost = strings.TrimSpace(c.Notifications.EmailSMTPHost)
	if c.Notifications.EmailSMTPPort == 0 {
		c.Notifications.EmailSMTPPort = defaultSMTPPort
	}
	if c.Notifications.EmailPassword == "" {
		if value, ok := os.LookupEnv("SMTP_PASSWORD"); ok {
			c.Notifications.EmailPassword = value
		}
	}
	c.Notifications.EmailFrom = strings.TrimSpace(c.Notifications.EmailFrom)
	recipients := make([]string, 0, len(c.Notifications.EmailTo))
	for _, to := range c.Notifications.EmailTo {
		if to = strings.TrimSpace(to); to != "" {
			recipients = append(recipients, to)
		}
	}
	c.Notifications.EmailTo = recipients
	if c.Notifications.DedupWindowSeconds < 0 {
		c.Notifications.DedupWindowSeconds = 0
	}
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = filepath.Join(c.Paths.StateDir, defaultCacheFileName)
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAliases() {
	if c.Aliases.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Aliases.APIKey = value
		} else if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
			c.Aliases.APIKey = value
		}
	}
	c.Aliases.APIKey = strings.TrimSpace(c.Aliases.APIKey)
	c.Aliases.Model = strings.TrimSpace(c.Aliases.Model)
	if c.Aliases.Model == "" {
		c.Aliases.Model = defaultAliasesModel
	}
	c.Aliases.Language = strings.ToLower(strings.TrimSpace(c.Aliases.Language))
	if c.Aliases.Language == "" {
		c.Aliases.Language = defaultAliasesLanguage
	}
	if c.Aliases.TimeoutSeconds <= 0 {
		c.Aliases.TimeoutSeconds = defaultAliasesTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

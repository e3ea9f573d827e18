package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWatchlist(); err != nil {
		return err
	}
	if err := c.validateListings(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateIntervals(); err != nil {
		return err
	}
	if err := c.validateAliases(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWatchlist() error {
	switch c.Watchlist.Provider {
	case ProviderLetterboxd:
		if c.Watchlist.Username == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("watchlist.username is required. Set LETTERBOXD_USERNAME env var or edit %s (create with 'cinewatch config init')", defaultPath)
		}
		if err := validateHTTPURL("watchlist.base_url", c.Watchlist.BaseURL); err != nil {
			return err
		}
	case ProviderFile:
		if c.Watchlist.File == "" {
			return errors.New("watchlist.file must be set when watchlist.provider is \"file\"")
		}
	default:
		return fmt.Errorf("watchlist.provider: unsupported value %q", c.Watchlist.Provider)
	}
	return nil
}

func (c *Config) validateListings() error {
	switch c.Listings.Provider {
	case ProviderComingSoon:
		if err := validateHTTPURL("listings.base_url", c.Listings.BaseURL); err != nil {
			return err
		}
		known := AllMethods()
		for _, method := range c.Listings.Methods {
			if !slices.Contains(known, method) {
				return fmt.Errorf("listings.methods: unsupported value %q (expected one of %s)", method, strings.Join(known, ", "))
			}
		}
	case ProviderFile:
		if c.Listings.File == "" {
			return errors.New("listings.file must be set when listings.provider is \"file\"")
		}
	default:
		return fmt.Errorf("listings.provider: unsupported value %q", c.Listings.Provider)
	}
	return nil
}

func (c *Config) validateHTTP() error {
	if c.HTTP.RequestsPerSecond < 0 {
		return errors.New("http.requests_per_second must not be negative")
	}
	if c.HTTP.ProxyURL != "" {
		parsed, err := url.Parse(c.HTTP.ProxyURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("http.proxy_url: invalid URL %q", c.HTTP.ProxyURL)
		}
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		return errors.New("matching.threshold must be greater than 0 and at most 1")
	}
	if c.Matching.Workers <= 0 {
		return errors.New("matching.workers must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	n := c.Notifications
	if (n.TelegramBotToken == "") != (n.TelegramChatID == "") {
		return errors.New("notifications.telegram_bot_token and notifications.telegram_chat_id must be set together")
	}
	if n.EmailSMTPHost != "" {
		if n.EmailFrom == "" {
			return errors.New("notifications.email_from must be set when notifications.email_smtp_host is set")
		}
		if len(n.EmailTo) == 0 {
			return errors.New("notifications.email_to must include at least one recipient when notifications.email_smtp_host is set")
		}
		if n.EmailSMTPPort <= 0 || n.EmailSMTPPort > 65535 {
			return errors.New("notifications.email_smtp_port must be a valid TCP port")
		}
	}
	return nil
}

func (c *Config) validateIntervals() error {
	return ensurePositiveMap(map[string]int{
		"http.request_timeout":          c.HTTP.RequestTimeout,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"schedule.interval_minutes":     c.Schedule.IntervalMinutes,
		"cache.ttl_minutes":             c.Cache.TTLMinutes,
	})
}

func (c *Config) validateAliases() error {
	if c.Aliases.Enabled && c.Aliases.APIKey == "" {
		return errors.New("aliases.api_key must be set when aliases.enabled is true (or set GEMINI_API_KEY)")
	}
	return nil
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%s: invalid URL %q", field, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

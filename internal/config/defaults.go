package config

const (
	defaultConfigPath              = "~/.config/cinewatch/config.toml"
	defaultStateDirFallback        = "~/.local/state/cinewatch"
	defaultLogDirName              = "logs"
	defaultCacheFileName           = "pagecache.db"
	defaultLogRetentionDays        = 30
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultWatchlistProvider       = ProviderLetterboxd
	defaultLetterboxdBaseURL       = "https://letterboxd.com"
	defaultWatchlistMaxPages       = 10
	defaultListingsProvider        = ProviderComingSoon
	defaultComingSoonBaseURL       = "https://www.comingsoon.it"
	defaultListingsCity            = "roma"
	defaultRequestTimeout          = 20
	defaultAcceptLanguage          = "it-IT,it;q=0.9,en;q=0.8"
	defaultRequestsPerSecond       = 2
	defaultMatchThreshold          = 0.75
	defaultMatchWorkers            = 4
	defaultNotifyRequestTimeout    = 10
	defaultNotifyDedupWindowSecond = 600
	defaultTelegramBaseURL         = "https://api.telegram.org"
	defaultSMTPPort                = 587
	defaultScheduleIntervalMinutes = 360
	defaultCacheTTLMinutes         = 30
	defaultAliasesModel            = "gemini-2.5-flash"
	defaultAliasesLanguage         = "it"
	defaultAliasesTimeoutSeconds   = 30
)

// Provider names accepted by the watchlist and listings sections.
const (
	ProviderLetterboxd = "letterboxd"
	ProviderComingSoon = "comingsoon"
	ProviderFile       = "file"
)

// Extraction methods understood by the ComingSoon listings scraper.
const (
	MethodContainer = "container"
	MethodHeading   = "heading"
	MethodFilmLink  = "film_link"
	MethodImageAlt  = "image_alt"
)

// AllMethods lists every listings extraction method in the order they run.
func AllMethods() []string {
	return []string{MethodContainer, MethodHeading, MethodFilmLink, MethodImageAlt}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		Watchlist: Watchlist{
			Provider: defaultWatchlistProvider,
			BaseURL:  defaultLetterboxdBaseURL,
			MaxPages: defaultWatchlistMaxPages,
		},
		Listings: Listings{
			Provider: defaultListingsProvider,
			City:     defaultListingsCity,
			BaseURL:  defaultComingSoonBaseURL,
			Methods:  AllMethods(),
		},
		HTTP: HTTP{
			RequestTimeout:    defaultRequestTimeout,
			AcceptLanguage:    defaultAcceptLanguage,
			RequestsPerSecond: defaultRequestsPerSecond,
		},
		Matching: Matching{
			Threshold: defaultMatchThreshold,
			Workers:   defaultMatchWorkers,
		},
		Notifications: Notifications{
			RequestTimeout:     defaultNotifyRequestTimeout,
			Errors:             true,
			DedupWindowSeconds: defaultNotifyDedupWindowSecond,
			TelegramBaseURL:    defaultTelegramBaseURL,
			EmailSMTPPort:      defaultSMTPPort,
		},
		Schedule: Schedule{
			IntervalMinutes: defaultScheduleIntervalMinutes,
			RunOnStart:      true,
		},
		Cache: Cache{
			Enabled:    true,
			TTLMinutes: defaultCacheTTLMinutes,
		},
		Aliases: Aliases{
			Model:          defaultAliasesModel,
			Language:       defaultAliasesLanguage,
			TimeoutSeconds: defaultAliasesTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

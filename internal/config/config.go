package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default query mirrors the account's topic: US politics, minus a couple of
// outlets whose articles are paywalled or listicle-heavy.
const defaultQuery = "politics OR government OR elections OR (president OR Biden OR Trump OR Kamala OR Harris OR Democrats OR Republicans) -ads -wired -gizmodo"

// Error reports invalid or missing configuration.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// GoogleCredentials is the subset of a service-account key file the Sheets
// client needs. The blob is parsed, never evaluated.
type GoogleCredentials struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
	TokenURI    string `json:"token_uri"`

	raw []byte
}

// JSON returns the original credential blob for option.WithCredentialsJSON.
func (c *GoogleCredentials) JSON() []byte {
	return c.raw
}

type Config struct {
	// News provider settings
	NewsAPIKey      string
	NewsQuery       string
	NewsLanguage    string
	NewsPageSize    int
	NewsProvider    string // "newsapi" or "rss"
	FeedsConfigPath string

	// Twitter settings
	TwitterAPIKey       string
	TwitterAPISecret    string
	TwitterAccessToken  string
	TwitterAccessSecret string
	TwitterAuthHeader   string // pre-signed Authorization header, alternative to OAuth1 keys

	// Sheet state store
	SheetCredentials *GoogleCredentials
	SheetID          string
	SheetRange       string

	// Composer: "plain", "digest" or "gemini"
	Composer     string
	GeminiAPIKey string

	// Quota limits
	MonthlyFetchLimit int
	DailyPostLimit    int
	MonthlyPostLimit  int

	// App settings
	RunMode        string // "once" or "loop"
	PollInterval   time.Duration
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	Debug          bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		NewsQuery:         defaultQuery,
		NewsLanguage:      "en",
		NewsPageSize:      100,
		NewsProvider:      "newsapi",
		FeedsConfigPath:   "configs/feeds.yaml",
		SheetRange:        "Sheet1",
		Composer:          "digest",
		MonthlyFetchLimit: 1000,
		DailyPostLimit:    50,
		MonthlyPostLimit:  1500,
		RunMode:           "once",
		PollInterval:      time.Hour,
		RequestTimeout:    30 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Second,
	}

	// Load from environment
	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.TwitterAPIKey = os.Getenv("TWITTER_API_KEY")
	cfg.TwitterAPISecret = os.Getenv("TWITTER_API_SECRET")
	cfg.TwitterAccessToken = os.Getenv("TWITTER_ACCESS_TOKEN")
	cfg.TwitterAccessSecret = os.Getenv("TWITTER_ACCESS_SECRET")
	cfg.TwitterAuthHeader = os.Getenv("TWITTER_AUTH_HEADER")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.SheetID = os.Getenv("SHEET_ID")

	cfg.NewsQuery = getEnvOrDefault("NEWS_QUERY", cfg.NewsQuery)
	cfg.NewsLanguage = getEnvOrDefault("NEWS_LANGUAGE", cfg.NewsLanguage)
	cfg.NewsProvider = getEnvOrDefault("NEWS_PROVIDER", cfg.NewsProvider)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.SheetRange = getEnvOrDefault("SHEET_RANGE", cfg.SheetRange)
	cfg.Composer = getEnvOrDefault("COMPOSER", cfg.Composer)
	cfg.RunMode = getEnvOrDefault("RUN_MODE", cfg.RunMode)

	cfg.MonthlyFetchLimit = getEnvIntOrDefault("MONTHLY_FETCH_LIMIT", cfg.MonthlyFetchLimit)
	cfg.DailyPostLimit = getEnvIntOrDefault("DAILY_POST_LIMIT", cfg.DailyPostLimit)
	cfg.MonthlyPostLimit = getEnvIntOrDefault("MONTHLY_POST_LIMIT", cfg.MonthlyPostLimit)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	if v := os.Getenv("POLL_INTERVAL_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.PollInterval = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryDelay = time.Duration(val) * time.Second
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	if blob := os.Getenv("GOOGLE_SHEETS_CREDENTIALS"); blob != "" {
		creds, err := ParseGoogleCredentials([]byte(blob))
		if err != nil {
			return nil, err
		}
		cfg.SheetCredentials = creds
	}

	return cfg, cfg.Validate()
}

// ParseGoogleCredentials parses a service-account key blob into a typed
// struct. Malformed or incomplete input is a hard error.
func ParseGoogleCredentials(blob []byte) (*GoogleCredentials, error) {
	var creds GoogleCredentials
	if err := json.Unmarshal(blob, &creds); err != nil {
		return nil, &Error{Field: "GOOGLE_SHEETS_CREDENTIALS", Reason: "not valid JSON"}
	}
	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, &Error{Field: "GOOGLE_SHEETS_CREDENTIALS", Reason: "missing client_email or private_key"}
	}
	creds.raw = blob
	return &creds, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.NewsProvider != "newsapi" && c.NewsProvider != "rss" {
		return &Error{Field: "NEWS_PROVIDER", Reason: "must be 'newsapi' or 'rss'"}
	}
	if c.NewsProvider == "newsapi" && c.NewsAPIKey == "" {
		return &Error{Field: "NEWS_API_KEY", Reason: "is required"}
	}
	if c.SheetID == "" {
		return &Error{Field: "SHEET_ID", Reason: "is required"}
	}
	if c.SheetCredentials == nil {
		return &Error{Field: "GOOGLE_SHEETS_CREDENTIALS", Reason: "is required"}
	}
	if !c.HasOAuth1Keys() && c.TwitterAuthHeader == "" {
		return &Error{Field: "TWITTER_API_KEY", Reason: "OAuth1 keys or TWITTER_AUTH_HEADER required"}
	}
	switch c.Composer {
	case "plain", "digest":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return &Error{Field: "GEMINI_API_KEY", Reason: "is required for the gemini composer"}
		}
	default:
		return &Error{Field: "COMPOSER", Reason: "must be 'plain', 'digest' or 'gemini'"}
	}
	if c.RunMode != "once" && c.RunMode != "loop" {
		return &Error{Field: "RUN_MODE", Reason: "must be 'once' or 'loop'"}
	}
	return nil
}

// HasOAuth1Keys reports whether the full OAuth1 credential set is present.
func (c *Config) HasOAuth1Keys() bool {
	return c.TwitterAPIKey != "" && c.TwitterAPISecret != "" &&
		c.TwitterAccessToken != "" && c.TwitterAccessSecret != ""
}

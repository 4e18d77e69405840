package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	BackendBaseURL      string        `mapstructure:"BACKEND_BASE_URL"`
	AuthBaseURL         string        `mapstructure:"AUTH_BASE_URL"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LiveMeetingToken    string        `mapstructure:"LIVE_MEETING_TOKEN"`
	SessionSigningKey   string        `mapstructure:"SESSION_SIGNING_KEY"`
	SessionCookieSecure bool          `mapstructure:"SESSION_COOKIE_SECURE"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	LoginRateLimitRPS   float64       `mapstructure:"LOGIN_RATE_LIMIT_RPS"`
	LoginRateLimitBurst int           `mapstructure:"LOGIN_RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOGIN_RATE_LIMIT_RPS", 1)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 5)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("BACKEND_BASE_URL")
	v.BindEnv("AUTH_BASE_URL")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("LIVE_MEETING_TOKEN")
	v.BindEnv("SESSION_SIGNING_KEY")
	v.BindEnv("SESSION_COOKIE_SECURE")
	v.BindEnv("SESSION_TTL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("LOGIN_RATE_LIMIT_RPS")
	v.BindEnv("LOGIN_RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}

	if cfg.BackendBaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = cfg.BackendBaseURL
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks the values Load cannot reject on its own: both base URLs
// must be absolute http(s) URLs, the request timeout and session TTL must
// be positive, and a configured signing key must decode to at least 32 bytes.
func (c *Config) Validate() error {
	if err := validateBaseURL("BACKEND_BASE_URL", c.BackendBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("AUTH_BASE_URL", c.AuthBaseURL); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionSigningKey != "" {
		if _, err := decodeSigningKey(c.SessionSigningKey); err != nil {
			return err
		}
	}
	return nil
}

// SigningKey returns the session signing key from SESSION_SIGNING_KEY or a
// random 32-byte key when it is unset. The second return value is true when
// the key was generated.
func (c *Config) SigningKey() ([]byte, bool, error) {
	if c.SessionSigningKey != "" {
		key, err := decodeSigningKey(c.SessionSigningKey)
		return key, false, err
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate session signing key: %w", err)
	}
	return key, true, nil
}

func decodeSigningKey(raw string) ([]byte, error) {
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("SESSION_SIGNING_KEY is not valid hex: %w", err)
	}
	if len(key) < 32 {
		return nil, fmt.Errorf("SESSION_SIGNING_KEY must be at least 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	return key, nil
}

func validateBaseURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid url: %w", name, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}

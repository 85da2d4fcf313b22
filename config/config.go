package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"calendar-integration/pkg/gcalendar"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppName names the XDG data directory.
const AppName = "calendar-integration"

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig
	RateLimit  RateLimitConfig

	// Calendar integration
	Google     GoogleConfig
	OAuth      OAuthConfig
	TokenStore TokenStoreConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type RateLimitConfig struct {
	RequestsPerMin int
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	CalendarID   string
	// Endpoint overrides the Calendar API base URL (tests, proxies).
	Endpoint string
}

type OAuthConfig struct {
	RefreshMargin time.Duration
	StateSecret   string
	StateTTL      time.Duration
}

type TokenStoreConfig struct {
	ConnectionString string
}

// Load loads configuration using Viper.
// A .env file in the working directory is applied to the process environment first.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/app/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = v.GetString("environment.name")
	cfg.HTTPServer.Port = v.GetInt("http_server.port")
	cfg.HTTPServer.Mode = v.GetString("http_server.mode")
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")
	cfg.RateLimit.RequestsPerMin = v.GetInt("rate_limit.requests_per_min")

	// Google
	cfg.Google.ClientID = v.GetString("google.client_id")
	cfg.Google.ClientSecret = v.GetString("google.client_secret")
	cfg.Google.RedirectURI = v.GetString("google.redirect_uri")
	cfg.Google.Scopes = splitList(v.Get("google.scopes"))
	cfg.Google.CalendarID = v.GetString("google.calendar_id")
	cfg.Google.Endpoint = v.GetString("google.endpoint")

	// OAuth
	cfg.OAuth.RefreshMargin = v.GetDuration("oauth.refresh_margin")
	cfg.OAuth.StateSecret = v.GetString("oauth.state_secret")
	cfg.OAuth.StateTTL = v.GetDuration("oauth.state_ttl")

	// Token store
	cfg.TokenStore.ConnectionString = v.GetString("token_store.connection_string")

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment.name", "development")
	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.mode", "debug")
	v.SetDefault("logger.level", "debug")
	v.SetDefault("logger.mode", "development")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.color_enabled", true)
	v.SetDefault("rate_limit.requests_per_min", 60)

	v.SetDefault("google.scopes", gcalendar.DefaultScopes)
	v.SetDefault("google.calendar_id", "primary")

	v.SetDefault("oauth.refresh_margin", "5m")
	v.SetDefault("oauth.state_ttl", "15m")

	v.SetDefault("token_store.connection_string", DefaultTokenStore())
}

// DefaultTokenStore is a SQLite file under the XDG data home.
func DefaultTokenStore() string {
	return "sqlite://" + filepath.Join(xdg.DataHome, AppName, "tokens.db")
}

// Validate checks the options the calendar adapter cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.Google.ClientID == "" {
		missing = append(missing, "google.client_id")
	}
	if c.Google.ClientSecret == "" {
		missing = append(missing, "google.client_secret")
	}
	if c.Google.RedirectURI == "" {
		missing = append(missing, "google.redirect_uri")
	}
	if c.TokenStore.ConnectionString == "" {
		missing = append(missing, "token_store.connection_string")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.OAuth.RefreshMargin < 0 {
		return fmt.Errorf("oauth.refresh_margin must not be negative")
	}
	return nil
}

// splitList accepts a YAML list or a comma/space separated env string.
func splitList(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case []string:
		items = val
	case []any:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	case string:
		items = strings.FieldsFunc(val, func(r rune) bool { return r == ',' || r == ' ' })
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

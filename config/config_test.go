package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"calendar-integration/pkg/gcalendar"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPServer.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTPServer.Port)
	}
	if cfg.Google.CalendarID != "primary" {
		t.Errorf("expected primary calendar, got %q", cfg.Google.CalendarID)
	}
	if !reflect.DeepEqual(cfg.Google.Scopes, gcalendar.DefaultScopes) {
		t.Errorf("expected provider default scopes, got %v", cfg.Google.Scopes)
	}
	if cfg.OAuth.RefreshMargin != 5*time.Minute {
		t.Errorf("expected 5m margin, got %s", cfg.OAuth.RefreshMargin)
	}
	if cfg.RateLimit.RequestsPerMin != 60 {
		t.Errorf("expected 60/min, got %d", cfg.RateLimit.RequestsPerMin)
	}
	if !strings.HasPrefix(cfg.TokenStore.ConnectionString, "sqlite://") ||
		!strings.HasSuffix(cfg.TokenStore.ConnectionString, filepath.Join(AppName, "tokens.db")) {
		t.Errorf("unexpected default store: %s", cfg.TokenStore.ConnectionString)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := `
google:
  client_id: file-client
  client_secret: file-secret
  redirect_uri: http://localhost:8080/api/v1/calendar/oauth/callback
  scopes:
    - https://www.googleapis.com/auth/calendar.events
oauth:
  refresh_margin: 2m
token_store:
  connection_string: memory://
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GOOGLE_CALENDAR_ID=team@example.com\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("GOOGLE_CLIENT_ID", "env-client")
	// registers a restore; godotenv writes straight into the process environment
	t.Setenv("GOOGLE_CALENDAR_ID", "")
	os.Unsetenv("GOOGLE_CALENDAR_ID")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Google.ClientID != "env-client" {
		t.Errorf("env should override file, got %q", cfg.Google.ClientID)
	}
	if cfg.Google.ClientSecret != "file-secret" {
		t.Errorf("unexpected secret %q", cfg.Google.ClientSecret)
	}
	if cfg.Google.CalendarID != "team@example.com" {
		t.Errorf(".env value not applied, got %q", cfg.Google.CalendarID)
	}
	if len(cfg.Google.Scopes) != 1 {
		t.Errorf("unexpected scopes %v", cfg.Google.Scopes)
	}
	if cfg.OAuth.RefreshMargin != 2*time.Minute {
		t.Errorf("unexpected margin %s", cfg.OAuth.RefreshMargin)
	}
	if cfg.TokenStore.ConnectionString != "memory://" {
		t.Errorf("unexpected store %q", cfg.TokenStore.ConnectionString)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Google:     GoogleConfig{ClientID: "c", ClientSecret: "s", RedirectURI: "http://x"},
		TokenStore: TokenStoreConfig{ConnectionString: "memory://"},
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing client id", func(c *Config) { c.Google.ClientID = "" }, "google.client_id"},
		{"missing secret", func(c *Config) { c.Google.ClientSecret = "" }, "google.client_secret"},
		{"missing redirect", func(c *Config) { c.Google.RedirectURI = "" }, "google.redirect_uri"},
		{"missing store", func(c *Config) { c.TokenStore.ConnectionString = "" }, "token_store.connection_string"},
		{"negative margin", func(c *Config) { c.OAuth.RefreshMargin = -time.Second }, "refresh_margin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"env string", "a, b c", 3},
		{"yaml list", []any{"a", " ", "b"}, 2},
		{"string slice", []string{"a"}, 1},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitList(tt.in); len(got) != tt.want {
				t.Errorf("expected %d items, got %v", tt.want, got)
			}
		})
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"calendar-integration/config"
	_ "calendar-integration/docs" // Swagger docs
	calendarUC "calendar-integration/internal/calendar/usecase"
	"calendar-integration/internal/httpserver"
	"calendar-integration/internal/oauth"
	oauthUC "calendar-integration/internal/oauth/usecase"
	"calendar-integration/internal/token/repository/backend"
	"calendar-integration/pkg/datemath"
	"calendar-integration/pkg/gcalendar"
	"calendar-integration/pkg/log"
)

// @title       Calendar Integration API
// @description Connects users' Google Calendars and reads or books events in their local time.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config: ", err)
		os.Exit(1)
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Calendar Integration...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "Server stopped with error: ", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger log.Logger) error {
	// 3. Token store
	store, err := backend.Open(ctx, cfg.TokenStore.ConnectionString, logger)
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warnf(ctx, "close token store: %v", err)
		}
	}()
	logger.Infof(ctx, "Token store: %s", backend.Redact(cfg.TokenStore.ConnectionString))

	// 4. OAuth session manager
	provider, err := gcalendar.NewOAuthProvider(gcalendar.OAuthConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURI,
		Scopes:       cfg.Google.Scopes,
	})
	if err != nil {
		return fmt.Errorf("oauth provider: %w", err)
	}
	session := oauthUC.New(logger, provider, store, oauth.Config{
		RefreshMargin: cfg.OAuth.RefreshMargin,
		Scopes:        provider.Scopes(),
		Policy:        oauth.DefaultConsentPolicy,
	})

	// 5. Calendar adapter
	normalizer, err := datemath.NewNormalizer(datemath.DefaultCacheSize)
	if err != nil {
		return fmt.Errorf("normalizer: %w", err)
	}
	adapter := calendarUC.New(logger, normalizer, store, session,
		gcalendar.ClientFactory{Endpoint: cfg.Google.Endpoint},
		calendarUC.Config{CalendarID: cfg.Google.CalendarID},
	)

	// 6. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		RateLimitPerMin: cfg.RateLimit.RequestsPerMin,
		Calendar:        adapter,
		Store:           store,
		StateSecret:     cfg.OAuth.StateSecret,
		StateTTL:        cfg.OAuth.StateTTL,
	})
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	// 7. Run
	return httpServer.Run(ctx)
}

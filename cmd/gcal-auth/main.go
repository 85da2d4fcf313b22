// Command gcal-auth authorizes a user's Google Calendar from a terminal and
// stores the resulting credential in the configured token store.
//
// Usage:
//
//	go run ./cmd/gcal-auth --user alice
//
// Open the printed URL, grant access, then paste the "code" query parameter
// from the redirect back into the prompt.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"calendar-integration/config"
	"calendar-integration/internal/calendar"
	calendarUC "calendar-integration/internal/calendar/usecase"
	"calendar-integration/internal/oauth"
	oauthUC "calendar-integration/internal/oauth/usecase"
	"calendar-integration/internal/token/repository/backend"
	"calendar-integration/pkg/datemath"
	"calendar-integration/pkg/gcalendar"
	"calendar-integration/pkg/log"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "gcal-auth",
		Usage: "authorize Google Calendar access for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Usage:    "user id the credential is stored under",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "token store connection string (overrides token_store.connection_string)",
				Sources: cli.EnvVars("TOKEN_STORE_CONNECTION_STRING"),
			},
			&cli.StringSliceFlag{
				Name:  "scope",
				Usage: "scope to request; repeat for several (defaults to google.scopes)",
			},
		},
		Action: authorize,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gcal-auth:", err)
		os.Exit(1)
	}
}

func authorize(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if s := cmd.String("store"); s != "" {
		cfg.TokenStore.ConnectionString = s
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.Init(log.ZapConfig{
		Level:    "warn",
		Mode:     cfg.Logger.Mode,
		Encoding: "console",
	})

	store, err := backend.Open(ctx, cfg.TokenStore.ConnectionString, logger)
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}
	defer store.Close()

	provider, err := gcalendar.NewOAuthProvider(gcalendar.OAuthConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURI,
		Scopes:       cfg.Google.Scopes,
	})
	if err != nil {
		return err
	}
	session := oauthUC.New(logger, provider, store, oauth.Config{
		RefreshMargin: cfg.OAuth.RefreshMargin,
		Scopes:        provider.Scopes(),
	})
	normalizer, err := datemath.NewNormalizer(datemath.DefaultCacheSize)
	if err != nil {
		return err
	}
	adapter := calendarUC.New(logger, normalizer, store, session,
		gcalendar.ClientFactory{Endpoint: cfg.Google.Endpoint},
		calendarUC.Config{CalendarID: cfg.Google.CalendarID},
	)

	return runConsent(ctx, adapter, cmd.String("user"), cmd.StringSlice("scope"), os.Stdin, os.Stdout)
}

// runConsent prints the consent URL, reads the pasted code and stores the credential.
func runConsent(ctx context.Context, adapter calendar.Adapter, userID string, scopes []string, in io.Reader, out io.Writer) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("--user must not be blank")
	}

	conn, err := adapter.Connect(ctx, calendar.ConnectInput{State: uuid.NewString(), Scopes: scopes})
	if err != nil {
		return fmt.Errorf("build consent url: %w", err)
	}

	fmt.Fprintln(out, "Open this URL in a browser and grant access:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, conn.URL)
	fmt.Fprintln(out)
	fmt.Fprint(out, "Paste the authorization code: ")

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code entered")
	}

	res, err := adapter.Authorize(ctx, calendar.AuthorizeInput{UserID: userID, Code: code})
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}

	fmt.Fprintf(out, "\nStored credential for %s (scopes: %s, expires %s)\n",
		res.Credential.UserID, res.Credential.ScopeString(), res.Credential.Expiry.Format("2006-01-02 15:04:05 MST"))
	if !res.Credential.HasRefreshToken() {
		fmt.Fprintln(out, "Warning: no refresh token was issued; revoke the app's access and run again.")
	}
	return nil
}

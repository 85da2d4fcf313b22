package http

import (
	"time"

	"calendar-integration/internal/calendar"
	"calendar-integration/pkg/log"

	"github.com/gin-gonic/gin"
)

// Handler is the public interface for the calendar HTTP delivery layer.
type Handler interface {
	Connect(c *gin.Context)
	OAuthCallback(c *gin.Context)
	Authorize(c *gin.Context)
	ListEvents(c *gin.Context)
	CreateEvent(c *gin.Context)
	RefreshToken(c *gin.Context)
}

type handler struct {
	l     log.Logger
	uc    calendar.Adapter
	state *stateSigner
}

// Config configures the delivery layer.
type Config struct {
	// StateSecret signs OAuth state. Empty means a random per-process key,
	// which invalidates pending consent flows on restart.
	StateSecret string
	// StateTTL bounds how long a consent flow may take. Defaults to 15 minutes.
	StateTTL time.Duration
}

// New creates a new HTTP handler for the calendar domain.
func New(l log.Logger, uc calendar.Adapter, cfg Config) (*handler, error) {
	signer, err := newStateSigner(cfg.StateSecret, cfg.StateTTL)
	if err != nil {
		return nil, err
	}
	return &handler{
		l:     l,
		uc:    uc,
		state: signer,
	}, nil
}

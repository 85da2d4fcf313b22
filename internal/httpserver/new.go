package httpserver

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"calendar-integration/internal/calendar"
	"calendar-integration/internal/token/repository"
	"calendar-integration/pkg/log"
)

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	// Server
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string
	rateLimit   int

	// Calendar domain
	calendar    calendar.Adapter
	store       repository.CredentialRepository
	stateSecret string
	stateTTL    time.Duration
}

// Config is the dependency bag passed to New().
type Config struct {
	Port            int
	Mode            string
	Environment     string
	RateLimitPerMin int

	// Calendar domain
	Calendar    calendar.Adapter
	Store       repository.CredentialRepository
	StateSecret string
	StateTTL    time.Duration
}

// New creates a new HTTPServer instance.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:           logger,
		gin:         gin.New(),
		port:        cfg.Port,
		mode:        cfg.Mode,
		environment: cfg.Environment,
		rateLimit:   cfg.RateLimitPerMin,
		calendar:    cfg.Calendar,
		store:       cfg.Store,
		stateSecret: cfg.StateSecret,
		stateTTL:    cfg.StateTTL,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}
	if err := srv.mapHandlers(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (srv HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	if srv.calendar == nil {
		return errors.New("calendar adapter is required")
	}
	if srv.store == nil {
		return errors.New("token store is required")
	}
	return nil
}

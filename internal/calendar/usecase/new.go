package usecase

import (
	"time"

	"calendar-integration/internal/model"
	"calendar-integration/internal/oauth"
	"calendar-integration/internal/token/repository"
	"calendar-integration/pkg/gcalendar"
	pkgLog "calendar-integration/pkg/log"
)

// Normalizer converts wall-clock timestamps to UTC instants.
type Normalizer interface {
	ToUTCInstant(local, timezone string) (time.Time, error)
}

// Config holds the adapter's per-process settings.
type Config struct {
	// CalendarID is used when a request names none. Defaults to model.DefaultCalendarID.
	CalendarID string
	// PageSize is the events.list page size; 0 leaves it to the provider.
	PageSize int64
	// Now defaults to time.Now.
	Now func() time.Time
}

// implUseCase is the Google implementation of calendar.Adapter.
// Credentials are re-read from the store on every call.
type implUseCase struct {
	l          pkgLog.Logger
	normalizer Normalizer
	repo       repository.CredentialRepository
	session    oauth.Manager
	clients    gcalendar.ClientFactory
	calendarID string
	pageSize   int64
	now        func() time.Time
}

// New creates the Google calendar adapter.
func New(
	l pkgLog.Logger,
	normalizer Normalizer,
	repo repository.CredentialRepository,
	session oauth.Manager,
	clients gcalendar.ClientFactory,
	cfg Config,
) *implUseCase {
	uc := &implUseCase{
		l:          l,
		normalizer: normalizer,
		repo:       repo,
		session:    session,
		clients:    clients,
		calendarID: cfg.CalendarID,
		pageSize:   cfg.PageSize,
		now:        cfg.Now,
	}
	if uc.calendarID == "" {
		uc.calendarID = model.DefaultCalendarID
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}

package memory

import (
	"sync"
	"time"

	"calendar-integration/internal/model"
	"calendar-integration/internal/token/repository"
)

type implRepository struct {
	mu      sync.RWMutex
	records map[string]model.Credential
	now     func() time.Time
}

// New creates an in-process Repository. Records do not survive a restart.
func New() repository.Repository {
	return &implRepository{
		records: make(map[string]model.Credential),
		now:     time.Now,
	}
}

func (r *implRepository) Close() error { return nil }

func clone(c model.Credential) model.Credential {
	if c.Scope != nil {
		c.Scope = append([]string(nil), c.Scope...)
	}
	return c
}

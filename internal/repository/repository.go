package repository

import (
	"context"
	"time"

	"github.com/Houeta/staff-directory/internal/metrics"
	"github.com/Houeta/staff-directory/internal/models"
)

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// SessionRepoIface persists the cached user record. It satisfies cache.Store.
type SessionRepoIface interface {
	Load(ctx context.Context, key string) (models.Record, error)
	Save(ctx context.Context, key string, rec models.Record) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

func NewSessionRepository(db Database, metrics *metrics.Metrics) SessionRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// JournalRepoIface records confirmed saves so the last one can be reported later.
type JournalRepoIface interface {
	SaveConfirmed(ctx context.Context, entry models.JournalEntry) error
	GetLastConfirmed(ctx context.Context, empID string, facet models.Facet) (time.Time, error)
}

func NewJournalRepository(db Database, metrics *metrics.Metrics) JournalRepoIface {
	return &Repository{db: db, metrics: metrics}
}

func (r *Repository) observe(queryType string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/staff-directory/internal/models"
	"github.com/jackc/pgx/v5"
)

var ErrNoJournalEntry = errors.New("no confirmed save recorded")

// SaveConfirmed appends a confirmed save to the journal.
func (r *Repository) SaveConfirmed(ctx context.Context, entry models.JournalEntry) error {
	defer r.observe("save_journal", time.Now())

	query := `
		INSERT INTO save_journal (empid, facet, request_id, method, attempts, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := r.db.Exec(ctx, query,
		entry.EmpID, string(entry.Facet), entry.RequestID, entry.Method, entry.Attempts, entry.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("failed to execute insert query: %w", err)
	}

	return nil
}

// GetLastConfirmed returns when the facet of empID was last confirmed.
func (r *Repository) GetLastConfirmed(ctx context.Context, empID string, facet models.Facet) (time.Time, error) {
	defer r.observe("get_last_confirmed", time.Now())

	query := `SELECT confirmed_at FROM save_journal WHERE empid = $1 AND facet = $2 ORDER BY confirmed_at DESC LIMIT 1`

	var last time.Time

	err := r.db.QueryRow(ctx, query, empID, string(facet)).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrNoJournalEntry
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last confirmed save from table save_journal: %w", err)
	}

	return last, nil
}

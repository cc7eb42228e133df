package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/staff-directory/internal/cache"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/jackc/pgx/v5"
)

// Load returns the record stored under key, or cache.ErrNotFound.
func (r *Repository) Load(ctx context.Context, key string) (models.Record, error) {
	defer r.observe("load_session", time.Now())

	query := `SELECT record FROM session_cache WHERE cache_key = $1`

	var data []byte
	err := r.db.QueryRow(ctx, query, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached record: %w", err)
	}

	return models.DecodeRecord(data)
}

// Save upserts the record under key.
func (r *Repository) Save(ctx context.Context, key string, rec models.Record) error {
	defer r.observe("save_session", time.Now())

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	query := `
		INSERT INTO session_cache (cache_key, record)
		VALUES ($1, $2)
		ON CONFLICT (cache_key) DO UPDATE SET record = EXCLUDED.record, updated_at = CURRENT_TIMESTAMP;`

	if _, err = r.db.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to save cached record: %w", err)
	}

	return nil
}

// Delete removes the record stored under key. Deleting a missing key is not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	defer r.observe("delete_session", time.Now())

	query := `DELETE FROM session_cache WHERE cache_key = $1`

	if _, err := r.db.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete cached record: %w", err)
	}

	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

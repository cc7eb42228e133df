//go:build integration

package repository_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Houeta/staff-directory/internal/cache"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/Houeta/staff-directory/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestSessionRepository_Postgres(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("staffdir"),
		postgres.WithUsername("staffdir"),
		postgres.WithPassword("staffdir"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := repository.NewDatabase(ctx, repository.Conn{
		Host: host, Port: port.Port(), User: "staffdir", Password: "staffdir", Name: "staffdir",
	})
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, goose.Up(stdlib.OpenDBFromPool(pool), "../../migrations"))

	repo := repository.NewSessionRepository(pool, nil)
	c := cache.New(slog.Default(), repo, cache.DefaultKey, nil)

	require.NoError(t, c.Replace(ctx, models.Record{"empid": []byte(`"E-1"`), "name": []byte(`"Ann"`)}))
	_, err = c.Merge(ctx, models.Record{"current_skills": []byte(`["Go"]`)})
	require.NoError(t, err)

	restored := cache.New(slog.Default(), repo, cache.DefaultKey, nil)
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, "Ann", restored.Get().String(models.KeyName))
	assert.JSONEq(t, `["Go"]`, string(restored.Get()[models.KeySkills]))

	require.NoError(t, restored.Clear(ctx))
	_, err = repo.Load(ctx, cache.DefaultKey)
	require.ErrorIs(t, err, cache.ErrNotFound)

	journal := repository.NewJournalRepository(pool, nil)
	confirmed := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, journal.SaveConfirmed(ctx, models.JournalEntry{
		EmpID: "E-1", Facet: models.FacetDetails, RequestID: "req", Method: "PUT", Attempts: 1, ConfirmedAt: confirmed,
	}))

	last, err := journal.GetLastConfirmed(ctx, "E-1", models.FacetDetails)
	require.NoError(t, err)
	assert.True(t, confirmed.Equal(last))
}

package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/Houeta/staff-directory/internal/cache"
	"github.com/Houeta/staff-directory/internal/metrics"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/Houeta/staff-directory/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loadSessionQuery = `SELECT record FROM session_cache WHERE cache_key = $1`

const saveSessionQuery = `
		INSERT INTO session_cache (cache_key, record)
		VALUES ($1, $2)
		ON CONFLICT (cache_key) DO UPDATE SET record = EXCLUDED.record, updated_at = CURRENT_TIMESTAMP;`

const deleteSessionQuery = `DELETE FROM session_cache WHERE cache_key = $1`

func TestLoad_Success(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"record"}).AddRow([]byte(`{"empid":"E-1","name":"Ann"}`))
	mock.ExpectQuery(regexp.QuoteMeta(loadSessionQuery)).WithArgs("user").WillReturnRows(rows)

	repo := repository.NewSessionRepository(mock, metrics.NewMetrics(prometheus.NewRegistry()))
	rec, err := repo.Load(context.Background(), "user")

	require.NoError(t, err)
	assert.Equal(t, "E-1", rec.ID())
	assert.Equal(t, "Ann", rec.String(models.KeyName))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(loadSessionQuery)).WithArgs("user").WillReturnError(pgx.ErrNoRows)

	repo := repository.NewSessionRepository(mock, nil)
	_, err = repo.Load(context.Background(), "user")

	require.ErrorIs(t, err, cache.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_QueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(loadSessionQuery)).WithArgs("user").WillReturnError(assert.AnError)

	repo := repository.NewSessionRepository(mock, nil)
	_, err = repo.Load(context.Background(), "user")

	require.Error(t, err)
	assert.Equal(t, "failed to get cached record: "+assert.AnError.Error(), err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_Success(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(saveSessionQuery)).
		WithArgs("user", []byte(`{"empid":"E-1"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := repository.NewSessionRepository(mock, nil)
	err = repo.Save(context.Background(), "user", models.Record{"empid": []byte(`"E-1"`)})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_QueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(saveSessionQuery)).
		WithArgs("user", pgxmock.AnyArg()).
		WillReturnError(assert.AnError)

	repo := repository.NewSessionRepository(mock, nil)
	err = repo.Save(context.Background(), "user", models.Record{})

	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to save cached record")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(deleteSessionQuery)).
		WithArgs("user").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta(deleteSessionQuery)).
		WithArgs("user").
		WillReturnError(assert.AnError)

	repo := repository.NewSessionRepository(mock, nil)

	require.NoError(t, repo.Delete(context.Background(), "user"))
	require.ErrorIs(t, repo.Delete(context.Background(), "user"), assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(assert.AnError)

	repo := repository.NewSessionRepository(mock, nil)

	require.NoError(t, repo.Ping(context.Background()))
	require.ErrorIs(t, repo.Ping(context.Background()), assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

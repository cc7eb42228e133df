package repository

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const (
	connectTimeout  = 5 * time.Second
	maxConnIdleTime = 30 * time.Second
	healthPeriod    = 30 * time.Second
)

// Conn locates the session cache and save journal database.
type Conn struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string // empty means "disable"
}

// URL renders the connection as a postgres:// URL with credentials escaped.
func (c Conn) URL() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}

// NewDatabase opens a small pool: the CLI holds at most a couple of connections at a time.
// The pool is pinged before it is returned.
func NewDatabase(ctx context.Context, conn Conn) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(conn.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MinConns = 0
	poolConfig.MaxConns = 2
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthPeriod

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection to PostgreSQL: %w", err)
	}

	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL DB %s: %w", net.JoinHostPort(conn.Host, conn.Port), err)
	}

	return dbpool, nil
}

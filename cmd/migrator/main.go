package main

import (
	"context"
	"flag"
	"log"

	"github.com/Houeta/staff-directory/internal/config"
	"github.com/Houeta/staff-directory/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
)

func main() {
	migrationsDir := flag.String("dir", "migrations", "directory holding the goose migrations")
	flag.Parse()

	cfg := config.MustLoad()
	if !cfg.Postgres.Enabled() {
		log.Fatal("postgres.host is not configured, nothing to migrate")
	}

	dbpool, dbErr := repository.NewDatabase(context.Background(), cfg.Postgres.Conn())
	if dbErr != nil {
		log.Fatalf("Failed to connect to DB: %v", dbErr)
	}
	defer dbpool.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal(err) //nolint:gocritic // nothing to release yet besides the pool
	}

	dtb := stdlib.OpenDBFromPool(dbpool)
	if migrationErr := goose.Up(dtb, *migrationsDir); migrationErr != nil {
		log.Fatal(migrationErr)
	}

	log.Println("✅ Migrations applied successfully")
}

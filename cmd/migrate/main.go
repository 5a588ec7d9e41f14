package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/vedawell/vedawell/internal/config"
	"github.com/vedawell/vedawell/internal/logger"
)

func main() {
	migrationsPath := flag.String("path", "migrations", "Directory containing migration files")
	down := flag.Bool("down", false, "Roll back the most recent migration instead of migrating up")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("connecting to database", "host", cfg.Postgres.Host, "db", cfg.Postgres.DBName)
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		logger.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		logger.Fatalw("failed to create migration driver", "error", err)
	}

	absPath, err := filepath.Abs(*migrationsPath)
	if err != nil {
		logger.Fatalw("failed to resolve migrations path", "error", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", absPath),
		"postgres",
		driver,
	)
	if err != nil {
		logger.Fatalw("failed to create migrate instance", "error", err)
	}

	if *down {
		logger.Info("rolling back one migration")
		err = m.Steps(-1)
	} else {
		logger.Info("running database migrations")
		err = m.Up()
	}
	if err != nil && err != migrate.ErrNoChange {
		logger.Fatalw("migration failed", "error", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && verr != migrate.ErrNilVersion {
		logger.Fatalw("failed to read migration version", "error", verr)
	}
	logger.Infow("migrations complete", "version", version, "dirty", dirty)
}

package database

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"esports-scoreboard/internal/config"
	"esports-scoreboard/internal/constants"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// archivePragmas tune SQLite for a single writer appending small JSON rows
// while the health check and ListEvents read concurrently.
var archivePragmas = [][2]string{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"cache_size", "-16000"},
	{"temp_store", "MEMORY"},
}

// New opens the event archive and brings its schema up to date. The
// archive is append-only; tournament state is never loaded from it.
func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	log := logger.With().Str("archive", cfg.DBPath).Logger()

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to open event archive")
		return nil, fmt.Errorf("failed to open event archive: %w", err)
	}

	// one connection keeps appends ordered and the pragmas in effect
	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	if err := tune(db, log); err != nil {
		db.Close()
		return nil, err
	}
	version, err := migrate(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to migrate event archive")
		db.Close()
		return nil, err
	}

	log.Info().Int64("schema_version", version).Msg("event archive ready")
	return db, nil
}

// migrate applies the embedded goose migrations and returns the resulting
// schema version.
func migrate(db *sql.DB) (int64, error) {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return 0, fmt.Errorf("failed to migrate archive schema: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("failed to read archive schema version: %w", err)
	}
	return version, nil
}

func tune(db *sql.DB, log zerolog.Logger) error {
	for _, p := range archivePragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p[0], p[1])); err != nil {
			log.Error().Err(err).Str("pragma", p[0]).Str("value", p[1]).Msg("failed to tune event archive")
			return fmt.Errorf("failed to set PRAGMA %s: %w", p[0], err)
		}
		log.Debug().Str("pragma", p[0]).Str("value", p[1]).Msg("archive pragma set")
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"esports-scoreboard/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// ExportRepository is the registry of export files written to disk.
type ExportRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewExportRepository(sqlDB *sql.DB, logger zerolog.Logger) *ExportRepository {
	return &ExportRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *ExportRepository) Save(ctx context.Context, file domain.ExportFile) (domain.ExportFile, error) {
	if file.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return domain.ExportFile{}, fmt.Errorf("failed to generate nanoid: %w", err)
		}
		file.ID = id
	}
	file.CreatedAt = file.CreatedAt.UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO export_files (id, filename, path, format, match_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			path = excluded.path,
			format = excluded.format,
			match_number = excluded.match_number,
			created_at = excluded.created_at`,
		file.ID, file.Filename, file.Path, string(file.Format), file.MatchNumber, file.CreatedAt,
	)
	if err != nil {
		return domain.ExportFile{}, fmt.Errorf("failed to register export file: %w", err)
	}

	r.logger.Debug().Str("filename", file.Filename).Str("format", string(file.Format)).Msg("export file registered")
	return file, nil
}

// List returns registered exports, newest first.
func (r *ExportRepository) List(ctx context.Context) ([]domain.ExportFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, filename, path, format, match_number, created_at
		FROM export_files
		ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query export files: %w", err)
	}
	defer rows.Close()

	files := []domain.ExportFile{}
	for rows.Next() {
		f, err := scanExportFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export files: %w", err)
	}
	return files, nil
}

func (r *ExportRepository) GetByFilename(ctx context.Context, filename string) (domain.ExportFile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, path, format, match_number, created_at
		FROM export_files WHERE filename = ?`,
		filename,
	)
	f, err := scanExportFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ExportFile{}, &domain.NotFoundError{Resource: "export file", ID: filename}
	}
	return f, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExportFile(s scanner) (domain.ExportFile, error) {
	var f domain.ExportFile
	var format string
	if err := s.Scan(&f.ID, &f.Filename, &f.Path, &format, &f.MatchNumber, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ExportFile{}, err
		}
		return domain.ExportFile{}, fmt.Errorf("failed to scan export file: %w", err)
	}
	f.Format = domain.ExportFormat(format)
	return f, nil
}

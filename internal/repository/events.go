package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"esports-scoreboard/internal/constants"
	"esports-scoreboard/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// EventRepository archives every relayed event. It is registered with the
// notification hub as a sink.
type EventRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewEventRepository(sqlDB *sql.DB, logger zerolog.Logger) *EventRepository {
	return &EventRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *EventRepository) Name() string {
	return "event-archive"
}

func (r *EventRepository) Deliver(ctx context.Context, event domain.Event) error {
	_, err := r.Append(ctx, event)
	return err
}

func (r *EventRepository) Append(ctx context.Context, event domain.Event) (domain.ArchivedEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.ArchivedEvent{}, fmt.Errorf("failed to encode event: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return domain.ArchivedEvent{}, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	archived := domain.ArchivedEvent{
		ID:          id,
		Type:        event.Type,
		MatchNumber: event.MatchNumber(),
		Payload:     string(payload),
		CreatedAt:   event.Timestamp.UTC(),
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (id, type, match_number, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		archived.ID, string(archived.Type), archived.MatchNumber, archived.Payload, archived.CreatedAt,
	)
	if err != nil {
		return domain.ArchivedEvent{}, fmt.Errorf("failed to insert event: %w", err)
	}

	r.logger.Debug().Str("id", id).Str("type", string(event.Type)).Msg("event archived")
	return archived, nil
}

// List returns the most recent events, newest first. An empty eventType
// matches every type.
func (r *EventRepository) List(ctx context.Context, eventType domain.EventType, limit int) ([]domain.ArchivedEvent, error) {
	if limit <= 0 {
		limit = constants.EventLogDefaultLimit
	}
	limit = min(limit, constants.EventLogMaxLimit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, match_number, payload, created_at
		FROM event_log
		WHERE (? = '' OR type = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		string(eventType), string(eventType), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []domain.ArchivedEvent{}
	for rows.Next() {
		var e domain.ArchivedEvent
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.MatchNumber, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = domain.EventType(typ)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

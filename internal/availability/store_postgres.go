package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"donorlift/pkg/domain"
	"donorlift/pkg/platform/sentinel"
)

// PostgresStore persists schedules as one JSONB document per volunteer.
// The document is the full tagged-union Schedule; querying only needs the
// is_active column, so the variant shapes stay schema-free.
//
// Expected table:
//
//	CREATE TABLE availability_schedules (
//	    volunteer_id UUID PRIMARY KEY,
//	    is_active    BOOLEAN NOT NULL,
//	    doc          JSONB NOT NULL,
//	    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, schedule *Schedule) error {
	doc, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO availability_schedules (volunteer_id, is_active, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (volunteer_id)
		DO UPDATE SET is_active = EXCLUDED.is_active, doc = EXCLUDED.doc, updated_at = now()`,
		schedule.VolunteerID.String(), schedule.IsActive, doc)
	if err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByVolunteer(ctx context.Context, volunteerID domain.UserID) (*Schedule, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM availability_schedules WHERE volunteer_id = $1`,
		volunteerID.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return unmarshalSchedule(doc)
}

func (s *PostgresStore) Delete(ctx context.Context, volunteerID domain.UserID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM availability_schedules WHERE volunteer_id = $1`,
		volunteerID.String())
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// AppendUnavailability does a read-modify-write under a row lock so two
// concurrent appends both survive.
func (s *PostgresStore) AppendUnavailability(ctx context.Context, volunteerID domain.UserID, window Unavailability) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var doc []byte
	err = tx.QueryRow(ctx,
		`SELECT doc FROM availability_schedules WHERE volunteer_id = $1 FOR UPDATE`,
		volunteerID.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("lock schedule: %w", err)
	}

	schedule, err := unmarshalSchedule(doc)
	if err != nil {
		return err
	}
	schedule.Unavailability = append(schedule.Unavailability, window)

	updated, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE availability_schedules SET doc = $2, updated_at = now() WHERE volunteer_id = $1`,
		volunteerID.String(), updated); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*Schedule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM availability_schedules WHERE is_active`)
	if err != nil {
		return nil, fmt.Errorf("list active schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*Schedule
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedule, err := unmarshalSchedule(doc)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

func unmarshalSchedule(doc []byte) (*Schedule, error) {
	var schedule Schedule
	if err := json.Unmarshal(doc, &schedule); err != nil {
		return nil, fmt.Errorf("unmarshal schedule: %w", err)
	}
	return &schedule, nil
}

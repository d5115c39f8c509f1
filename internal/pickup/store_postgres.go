package pickup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"donorlift/internal/geo"
	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
	"donorlift/pkg/platform/sentinel"
)

// PostgresStore persists pickup requests. Coordinates are stored as lat/lon
// columns (project-wide [lat, lon] convention); items and metadata ride as
// JSONB documents.
//
// Expected table:
//
//	CREATE TABLE pickup_requests (
//	    id           UUID PRIMARY KEY,
//	    donation_id  UUID NOT NULL UNIQUE,
//	    charity_id   UUID NOT NULL,
//	    volunteer_id UUID,
//	    lat          DOUBLE PRECISION,
//	    lon          DOUBLE PRECISION,
//	    items        JSONB NOT NULL,
//	    priority     TEXT NOT NULL,
//	    status       TEXT NOT NULL,
//	    metadata     JSONB NOT NULL,
//	    submitted_at TIMESTAMPTZ NOT NULL,
//	    accepted_at  TIMESTAMPTZ,
//	    completed_at TIMESTAMPTZ
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx, letting the insert
// run standalone or inside a caller-owned transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *PostgresStore) Create(ctx context.Context, request *Request) error {
	return s.createIn(ctx, s.pool, request)
}

// CreateInTx inserts the request within tx. Used by the donation store to
// write a donation and its pickup request as one atomic unit.
func (s *PostgresStore) CreateInTx(ctx context.Context, tx pgx.Tx, request *Request) error {
	return s.createIn(ctx, tx, request)
}

func (s *PostgresStore) createIn(ctx context.Context, db execer, request *Request) error {
	items, err := json.Marshal(request.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	metadata, err := json.Marshal(request.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	var lat, lon *float64
	if request.Coordinates != nil {
		lat, lon = &request.Coordinates.Lat, &request.Coordinates.Lon
	}
	var volunteer *string
	if request.VolunteerID != nil {
		v := request.VolunteerID.String()
		volunteer = &v
	}

	_, err = db.Exec(ctx, `
		INSERT INTO pickup_requests
		    (id, donation_id, charity_id, volunteer_id, lat, lon, items, priority, status, metadata,
		     submitted_at, accepted_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		request.ID.String(), request.DonationID.String(), request.CharityID.String(), volunteer,
		lat, lon, items, string(request.Priority), string(request.Status), metadata,
		request.Metadata.SubmittedAt, request.Metadata.AcceptedAt, request.Metadata.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert pickup request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.PickupID) (*Request, error) {
	row := s.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id.String())
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get pickup request: %w", err)
	}
	return request, nil
}

// UpdateStatus applies the transition in one conditional statement. COALESCE
// keeps already-set volunteer/timestamps intact, so a concurrent re-entry into
// accepted or delivered cannot clobber the first writer's values.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.PickupID, target Status, actor domain.UserID, now time.Time) (*Request, error) {
	if !target.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid status %q", target)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE pickup_requests SET
		    status = $2,
		    volunteer_id = CASE WHEN $2 = 'accepted' THEN COALESCE(volunteer_id, $3) ELSE volunteer_id END,
		    accepted_at  = CASE WHEN $2 = 'accepted' THEN COALESCE(accepted_at, $4) ELSE accepted_at END,
		    completed_at = CASE WHEN $2 = 'delivered' THEN COALESCE(completed_at, $4) ELSE completed_at END
		WHERE id = $1
		RETURNING id, donation_id, charity_id, volunteer_id, lat, lon, items, priority, status, metadata,
		          submitted_at, accepted_at, completed_at`,
		id.String(), string(target), actor.String(), now)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update pickup status: %w", err)
	}
	return request, nil
}

func (s *PostgresStore) List(ctx context.Context, status Status, priority Priority) ([]*Request, error) {
	rows, err := s.pool.Query(ctx, selectColumns+`
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR priority = $2)`,
		string(status), string(priority))
	if err != nil {
		return nil, fmt.Errorf("list pickup requests: %w", err)
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pickup request: %w", err)
		}
		out = append(out, request)
	}
	return out, rows.Err()
}

const selectColumns = `
	SELECT id, donation_id, charity_id, volunteer_id, lat, lon, items, priority, status, metadata,
	       submitted_at, accepted_at, completed_at
	FROM pickup_requests`

func scanRequest(row pgx.Row) (*Request, error) {
	var (
		request             Request
		idRaw, donationRaw  string
		charityRaw          string
		volunteerRaw        *string
		lat, lon            *float64
		itemsDoc, metaDoc   []byte
		priorityRaw, status string
		submittedAt         time.Time
		acceptedAt          *time.Time
		completedAt         *time.Time
	)
	err := row.Scan(&idRaw, &donationRaw, &charityRaw, &volunteerRaw, &lat, &lon,
		&itemsDoc, &priorityRaw, &status, &metaDoc, &submittedAt, &acceptedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if request.ID, err = domain.ParsePickupID(idRaw); err != nil {
		return nil, fmt.Errorf("parse pickup id: %w", err)
	}
	if request.DonationID, err = domain.ParseDonationID(donationRaw); err != nil {
		return nil, fmt.Errorf("parse donation id: %w", err)
	}
	if request.CharityID, err = domain.ParseCharityID(charityRaw); err != nil {
		return nil, fmt.Errorf("parse charity id: %w", err)
	}
	if volunteerRaw != nil {
		volunteer, err := domain.ParseUserID(*volunteerRaw)
		if err != nil {
			return nil, fmt.Errorf("parse volunteer id: %w", err)
		}
		request.VolunteerID = &volunteer
	}
	if lat != nil && lon != nil {
		request.Coordinates = &geo.Point{Lat: *lat, Lon: *lon}
	}
	if err := json.Unmarshal(itemsDoc, &request.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(metaDoc, &request.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	// Timestamp columns are authoritative over the JSONB copy.
	request.Metadata.SubmittedAt = submittedAt
	request.Metadata.AcceptedAt = acceptedAt
	request.Metadata.CompletedAt = completedAt
	request.Priority = Priority(priorityRaw)
	request.Status = Status(status)
	return &request, nil
}

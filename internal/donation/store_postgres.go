package donation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"donorlift/internal/geo"
	"donorlift/internal/pickup"
	"donorlift/pkg/domain"
	"donorlift/pkg/platform/sentinel"
)

// PostgresStore persists donations. Items ride as a JSONB document; the
// confirmation fields live in dedicated columns so Confirm can be a single
// conditional statement.
//
// Expected table:
//
//	CREATE TABLE donations (
//	    id             UUID PRIMARY KEY,
//	    donor_id       UUID NOT NULL,
//	    charity_id     UUID NOT NULL,
//	    pickup_id      UUID NOT NULL UNIQUE,
//	    items          JSONB NOT NULL,
//	    urgency        TEXT NOT NULL,
//	    status         TEXT NOT NULL,
//	    lat            DOUBLE PRECISION,
//	    lon            DOUBLE PRECISION,
//	    confirmed_at   TIMESTAMPTZ,
//	    thank_you_note TEXT,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    updated_at     TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool    *pgxpool.Pool
	pickups *pickup.PostgresStore
}

func NewPostgresStore(pool *pgxpool.Pool, pickups *pickup.PostgresStore) *PostgresStore {
	return &PostgresStore{pool: pool, pickups: pickups}
}

// Create inserts the donation and its pickup request in one transaction.
func (s *PostgresStore) Create(ctx context.Context, d *Donation, request *pickup.Request) error {
	items, err := json.Marshal(d.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	var lat, lon *float64
	if d.Coordinates != nil {
		lat, lon = &d.Coordinates.Lat, &d.Coordinates.Lon
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin donation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO donations
		    (id, donor_id, charity_id, pickup_id, items, urgency, status, lat, lon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		d.ID.String(), d.DonorID.String(), d.CharityID.String(), d.PickupID.String(),
		items, string(d.Urgency), string(d.Status), lat, lon, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}

	if err := s.pickups.CreateInTx(ctx, tx, request); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Get(ctx context.Context, id domain.DonationID) (*Donation, error) {
	row := s.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id.String())
	d, err := scanDonation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get donation: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListByDonor(ctx context.Context, donorID domain.UserID) ([]*Donation, error) {
	rows, err := s.pool.Query(ctx, selectColumns+` WHERE donor_id = $1 ORDER BY created_at DESC`, donorID.String())
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var out []*Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetStatus(ctx context.Context, id domain.DonationID, status Status, at time.Time) (*Donation, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE donations SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, donor_id, charity_id, pickup_id, items, urgency, status, lat, lon,
		          confirmed_at, thank_you_note, created_at, updated_at`,
		id.String(), string(status), at)
	d, err := scanDonation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("set donation status: %w", err)
	}
	return d, nil
}

// Confirm flips delivered to confirmed in one conditional update, so two
// racing confirmations cannot both pass the delivered check. When the guard
// fails, a follow-up read distinguishes missing, already confirmed, and not
// yet delivered.
func (s *PostgresStore) Confirm(ctx context.Context, id domain.DonationID, note string, at time.Time) (*Donation, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE donations SET status = 'confirmed', confirmed_at = $2, thank_you_note = $3, updated_at = $2
		WHERE id = $1 AND status = 'delivered'
		RETURNING id, donor_id, charity_id, pickup_id, items, urgency, status, lat, lon,
		          confirmed_at, thank_you_note, created_at, updated_at`,
		id.String(), at, note)
	d, err := scanDonation(row)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("confirm donation: %w", err)
	}

	var status string
	if err := s.pool.QueryRow(ctx, `SELECT status FROM donations WHERE id = $1`, id.String()).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("confirm donation: %w", err)
	}
	if Status(status) == StatusConfirmed {
		return nil, sentinel.ErrConflict
	}
	return nil, sentinel.ErrInvalidState
}

const selectColumns = `
	SELECT id, donor_id, charity_id, pickup_id, items, urgency, status, lat, lon,
	       confirmed_at, thank_you_note, created_at, updated_at
	FROM donations`

func scanDonation(row pgx.Row) (*Donation, error) {
	var (
		d                    Donation
		idRaw, donorRaw      string
		charityRaw, pickupID string
		itemsDoc             []byte
		urgencyRaw, status   string
		lat, lon             *float64
		confirmedAt          *time.Time
		thankYouNote         *string
	)
	err := row.Scan(&idRaw, &donorRaw, &charityRaw, &pickupID, &itemsDoc, &urgencyRaw, &status,
		&lat, &lon, &confirmedAt, &thankYouNote, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if d.ID, err = domain.ParseDonationID(idRaw); err != nil {
		return nil, fmt.Errorf("parse donation id: %w", err)
	}
	if d.DonorID, err = domain.ParseUserID(donorRaw); err != nil {
		return nil, fmt.Errorf("parse donor id: %w", err)
	}
	if d.CharityID, err = domain.ParseCharityID(charityRaw); err != nil {
		return nil, fmt.Errorf("parse charity id: %w", err)
	}
	if d.PickupID, err = domain.ParsePickupID(pickupID); err != nil {
		return nil, fmt.Errorf("parse pickup id: %w", err)
	}
	if err := json.Unmarshal(itemsDoc, &d.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if lat != nil && lon != nil {
		d.Coordinates = &geo.Point{Lat: *lat, Lon: *lon}
	}
	if confirmedAt != nil {
		confirmation := Confirmation{ConfirmedAt: *confirmedAt}
		if thankYouNote != nil {
			confirmation.ThankYouNote = *thankYouNote
		}
		d.Confirmation = &confirmation
	}
	d.Urgency = Urgency(urgencyRaw)
	d.Status = Status(status)
	return &d, nil
}

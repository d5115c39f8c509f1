//go:build integration

package pickup_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"donorlift/internal/geo"
	"donorlift/internal/pickup"
	"donorlift/pkg/domain"
	"donorlift/pkg/platform/sentinel"
	"donorlift/pkg/testutil/containers"
)

const pickupSchema = `
CREATE TABLE IF NOT EXISTS pickup_requests (
    id           UUID PRIMARY KEY,
    donation_id  UUID NOT NULL UNIQUE,
    charity_id   UUID NOT NULL,
    volunteer_id UUID,
    lat          DOUBLE PRECISION,
    lon          DOUBLE PRECISION,
    items        JSONB NOT NULL,
    priority     TEXT NOT NULL,
    status       TEXT NOT NULL,
    metadata     JSONB NOT NULL,
    submitted_at TIMESTAMPTZ NOT NULL,
    accepted_at  TIMESTAMPTZ,
    completed_at TIMESTAMPTZ
)`

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *pickup.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(s.postgres.Exec(context.Background(), pickupSchema))
	s.store = pickup.NewPostgresStore(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "pickup_requests"))
}

func (s *PostgresStoreSuite) seedRequest() *pickup.Request {
	req := &pickup.Request{
		ID:          domain.NewPickupID(),
		DonationID:  domain.NewDonationID(),
		CharityID:   domain.NewCharityID(),
		Coordinates: &geo.Point{Lat: -1.2864, Lon: 36.8172},
		Items:       []pickup.Item{{Category: "food", Quantity: 3, Condition: "good"}},
		Priority:    pickup.PriorityHigh,
		Status:      pickup.StatusAvailable,
		Metadata: pickup.Metadata{
			SubmittedAt:  time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC),
			Refrigerated: true,
		},
	}
	s.Require().NoError(s.store.Create(context.Background(), req))
	return req
}

func (s *PostgresStoreSuite) TestCreateAndGetRoundTrip() {
	req := s.seedRequest()

	got, err := s.store.Get(context.Background(), req.ID)
	s.Require().NoError(err)
	s.Equal(req.ID, got.ID)
	s.Equal(req.DonationID, got.DonationID)
	s.Require().NotNil(got.Coordinates)
	s.InDelta(-1.2864, got.Coordinates.Lat, 1e-9)
	s.InDelta(36.8172, got.Coordinates.Lon, 1e-9)
	s.Equal(pickup.PriorityHigh, got.Priority)
	s.True(got.Metadata.Refrigerated)
	s.True(req.Metadata.SubmittedAt.Equal(got.Metadata.SubmittedAt))
	s.Nil(got.VolunteerID)
	s.Nil(got.Metadata.AcceptedAt)
}

func (s *PostgresStoreSuite) TestGetUnknown() {
	_, err := s.store.Get(context.Background(), domain.NewPickupID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateStatusSetsTimestampsOnce() {
	req := s.seedRequest()
	actor := domain.NewUserID()
	t1 := time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	first, err := s.store.UpdateStatus(context.Background(), req.ID, pickup.StatusAccepted, actor, t1)
	s.Require().NoError(err)
	s.Require().NotNil(first.Metadata.AcceptedAt)
	s.True(t1.Equal(*first.Metadata.AcceptedAt))

	// Re-entry keeps the original volunteer and timestamp.
	second, err := s.store.UpdateStatus(context.Background(), req.ID, pickup.StatusAccepted, domain.NewUserID(), t2)
	s.Require().NoError(err)
	s.Equal(actor, *second.VolunteerID)
	s.True(t1.Equal(*second.Metadata.AcceptedAt))

	delivered, err := s.store.UpdateStatus(context.Background(), req.ID, pickup.StatusDelivered, actor, t2)
	s.Require().NoError(err)
	s.Require().NotNil(delivered.Metadata.CompletedAt)
	s.True(t2.Equal(*delivered.Metadata.CompletedAt))
}

// TestConcurrentAccept verifies the conditional update under concurrent
// writers: exactly one volunteer binding survives.
func (s *PostgresStoreSuite) TestConcurrentAccept() {
	req := s.seedRequest()
	const racers = 20

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.UpdateStatus(context.Background(), req.ID,
				pickup.StatusAccepted, domain.NewUserID(), time.Now().UTC())
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.store.Get(context.Background(), req.ID)
	s.Require().NoError(err)
	s.Equal(pickup.StatusAccepted, got.Status)
	s.NotNil(got.VolunteerID)
	s.NotNil(got.Metadata.AcceptedAt)
}

func (s *PostgresStoreSuite) TestListFilters() {
	high := s.seedRequest()
	low := s.seedRequest()
	_, err := s.postgres.Pool.Exec(context.Background(),
		`UPDATE pickup_requests SET priority = 'low', status = 'delivered' WHERE id = $1`, low.ID.String())
	s.Require().NoError(err)

	all, err := s.store.List(context.Background(), "", "")
	s.Require().NoError(err)
	s.Len(all, 2)

	available, err := s.store.List(context.Background(), pickup.StatusAvailable, "")
	s.Require().NoError(err)
	s.Require().Len(available, 1)
	s.Equal(high.ID, available[0].ID)

	highOnly, err := s.store.List(context.Background(), "", pickup.PriorityHigh)
	s.Require().NoError(err)
	s.Require().Len(highOnly, 1)
	s.Equal(high.ID, highOnly[0].ID)
}

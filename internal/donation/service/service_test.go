package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlift/internal/donation"
	"donorlift/internal/geo"
	"donorlift/internal/identity"
	"donorlift/internal/pickup"
	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
	"donorlift/pkg/requestcontext"
)

type stubGeoIndex struct {
	added map[domain.PickupID]geo.Point
}

func (g *stubGeoIndex) Add(_ context.Context, id domain.PickupID, p geo.Point) error {
	if g.added == nil {
		g.added = make(map[domain.PickupID]geo.Point)
	}
	g.added[id] = p
	return nil
}

type fixture struct {
	svc      *Service
	pickups  *pickup.InMemoryStore
	store    *donation.InMemoryStore
	identity *identity.InMemoryStore
	geoIndex *stubGeoIndex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pickups := pickup.NewInMemoryStore()
	store := donation.NewInMemoryStore(pickups)
	identityStore := identity.NewInMemoryStore()
	geoIndex := &stubGeoIndex{}
	return &fixture{
		svc:      New(store, identityStore, geoIndex, nil, nil),
		pickups:  pickups,
		store:    store,
		identity: identityStore,
		geoIndex: geoIndex,
	}
}

func (f *fixture) seedCharityUser(t *testing.T, charityID domain.CharityID) domain.UserID {
	t.Helper()
	userID := domain.NewUserID()
	require.NoError(t, f.identity.CreateUser(context.Background(), &identity.User{
		ID:    userID,
		Email: userID.String() + "@charity.test",
		Role:  identity.RoleCharity,
	}))
	require.NoError(t, f.identity.SaveCharityProfile(context.Background(), &identity.CharityProfile{
		UserID:    userID,
		CharityID: charityID,
		OrgName:   "Test Charity",
	}))
	return userID
}

func validInput() SubmitInput {
	return SubmitInput{
		CharityID: domain.NewCharityID(),
		Items: []donation.Item{
			{Category: "clothing", Description: "winter coats", Quantity: 4, Condition: "good"},
		},
		Urgency:     donation.UrgencyHigh,
		Coordinates: &geo.Point{Lat: -1.2864, Lon: 36.8172},
		Fragile:     true,
	}
}

func TestSubmitCreatesDonationAndPickupPair(t *testing.T) {
	f := newFixture(t)
	donor := domain.NewUserID()
	now := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	d, err := f.svc.Submit(ctx, donor, validInput())
	require.NoError(t, err)
	assert.Equal(t, donation.StatusSubmitted, d.Status)
	assert.Equal(t, donor, d.DonorID)
	assert.Equal(t, now, d.CreatedAt)

	request, err := f.pickups.Get(ctx, d.PickupID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, request.DonationID)
	assert.Equal(t, pickup.StatusAvailable, request.Status)
	assert.Nil(t, request.VolunteerID)
	assert.Equal(t, pickup.PriorityHigh, request.Priority)
	assert.Equal(t, now, request.Metadata.SubmittedAt)
	assert.True(t, request.Metadata.Fragile)
	require.Len(t, request.Items, 1)
	assert.Equal(t, "winter coats", request.Items[0].Description)

	// Coordinates were registered in the geo index.
	assert.Contains(t, f.geoIndex.added, d.PickupID)
}

func TestSubmitWithoutCoordinatesSkipsGeoIndex(t *testing.T) {
	f := newFixture(t)
	input := validInput()
	input.Coordinates = nil

	d, err := f.svc.Submit(context.Background(), domain.NewUserID(), input)
	require.NoError(t, err)
	assert.Nil(t, d.Coordinates)
	assert.Empty(t, f.geoIndex.added)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	donor := domain.NewUserID()

	tests := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"missing charity", func(in *SubmitInput) { in.CharityID = domain.CharityID{} }},
		{"no items", func(in *SubmitInput) { in.Items = nil }},
		{"zero quantity", func(in *SubmitInput) { in.Items[0].Quantity = 0 }},
		{"bad urgency", func(in *SubmitInput) { in.Urgency = "apocalyptic" }},
		{"bad coordinates", func(in *SubmitInput) { in.Coordinates = &geo.Point{Lat: 95, Lon: 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := f.svc.Submit(context.Background(), donor, input)
			require.Error(t, err)
			assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
		})
	}
}

func TestConfirmHappyPath(t *testing.T) {
	f := newFixture(t)
	input := validInput()
	d, err := f.svc.Submit(context.Background(), domain.NewUserID(), input)
	require.NoError(t, err)
	charityUser := f.seedCharityUser(t, input.CharityID)

	require.NoError(t, f.svc.ApplyPickupStatus(context.Background(), d.ID, pickup.StatusDelivered))

	now := time.Date(2024, 11, 3, 16, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	confirmed, err := f.svc.Confirm(ctx, charityUser, d.ID, "thank you for the coats")
	require.NoError(t, err)
	assert.Equal(t, donation.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.Confirmation)
	assert.Equal(t, "thank you for the coats", confirmed.Confirmation.ThankYouNote)
	assert.Equal(t, now, confirmed.Confirmation.ConfirmedAt)
}

func TestConfirmGuards(t *testing.T) {
	f := newFixture(t)
	input := validInput()
	d, err := f.svc.Submit(context.Background(), domain.NewUserID(), input)
	require.NoError(t, err)
	charityUser := f.seedCharityUser(t, input.CharityID)

	t.Run("empty note", func(t *testing.T) {
		_, err := f.svc.Confirm(context.Background(), charityUser, d.ID, "")
		assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	})

	t.Run("caller without charity profile", func(t *testing.T) {
		_, err := f.svc.Confirm(context.Background(), domain.NewUserID(), d.ID, "thanks")
		assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
	})

	t.Run("other charity", func(t *testing.T) {
		otherUser := f.seedCharityUser(t, domain.NewCharityID())
		_, err := f.svc.Confirm(context.Background(), otherUser, d.ID, "thanks")
		assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
	})

	t.Run("not delivered yet", func(t *testing.T) {
		_, err := f.svc.Confirm(context.Background(), charityUser, d.ID, "thanks")
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
	})

	t.Run("unknown donation", func(t *testing.T) {
		_, err := f.svc.Confirm(context.Background(), charityUser, domain.NewDonationID(), "thanks")
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("double confirm", func(t *testing.T) {
		require.NoError(t, f.svc.ApplyPickupStatus(context.Background(), d.ID, pickup.StatusDelivered))
		_, err := f.svc.Confirm(context.Background(), charityUser, d.ID, "thanks")
		require.NoError(t, err)
		_, err = f.svc.Confirm(context.Background(), charityUser, d.ID, "thanks again")
		assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
	})
}

func TestApplyPickupStatusProjection(t *testing.T) {
	f := newFixture(t)
	d, err := f.svc.Submit(context.Background(), domain.NewUserID(), validInput())
	require.NoError(t, err)

	steps := []struct {
		from pickup.Status
		want donation.Status
	}{
		{pickup.StatusAccepted, donation.StatusAssigned},
		{pickup.StatusEnRoutePickup, donation.StatusAssigned},
		{pickup.StatusPickedUp, donation.StatusPickedUp},
		{pickup.StatusEnRouteDelivery, donation.StatusPickedUp},
		{pickup.StatusDelivered, donation.StatusDelivered},
	}
	for _, step := range steps {
		require.NoError(t, f.svc.ApplyPickupStatus(context.Background(), d.ID, step.from))
		got, err := f.svc.Get(context.Background(), d.ID)
		require.NoError(t, err)
		assert.Equal(t, step.want, got.Status, "after pickup status %s", step.from)
	}
}

func TestApplyPickupStatusNeverDowngradesConfirmed(t *testing.T) {
	f := newFixture(t)
	input := validInput()
	d, err := f.svc.Submit(context.Background(), domain.NewUserID(), input)
	require.NoError(t, err)
	charityUser := f.seedCharityUser(t, input.CharityID)

	require.NoError(t, f.svc.ApplyPickupStatus(context.Background(), d.ID, pickup.StatusDelivered))
	_, err = f.svc.Confirm(context.Background(), charityUser, d.ID, "thanks")
	require.NoError(t, err)

	require.NoError(t, f.svc.ApplyPickupStatus(context.Background(), d.ID, pickup.StatusCancelled))
	got, err := f.svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusConfirmed, got.Status)
}

func TestApplyPickupStatusUnknown(t *testing.T) {
	f := newFixture(t)
	err := f.svc.ApplyPickupStatus(context.Background(), domain.NewDonationID(), pickup.Status("warp"))
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestListByDonor(t *testing.T) {
	f := newFixture(t)
	donor := domain.NewUserID()
	_, err := f.svc.Submit(context.Background(), donor, validInput())
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), domain.NewUserID(), validInput())
	require.NoError(t, err)

	out, err := f.svc.ListByDonor(context.Background(), donor)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

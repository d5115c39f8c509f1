package pickup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
)

func newTestRequest() *Request {
	return &Request{
		ID:         domain.NewPickupID(),
		DonationID: domain.NewDonationID(),
		CharityID:  domain.NewCharityID(),
		Priority:   PriorityMedium,
		Status:     StatusAvailable,
		Metadata:   Metadata{SubmittedAt: time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)},
	}
}

func TestApplyStatusRejectsUnknownTarget(t *testing.T) {
	req := newTestRequest()
	err := req.ApplyStatus(Status("teleported"), domain.NewUserID(), time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	assert.Equal(t, StatusAvailable, req.Status)
}

func TestApplyStatusAcceptedBindsVolunteerOnce(t *testing.T) {
	req := newTestRequest()
	first := domain.NewUserID()
	second := domain.NewUserID()
	t1 := time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, req.ApplyStatus(StatusAccepted, first, t1))
	require.NotNil(t, req.VolunteerID)
	assert.Equal(t, first, *req.VolunteerID)
	require.NotNil(t, req.Metadata.AcceptedAt)
	assert.Equal(t, t1, *req.Metadata.AcceptedAt)

	// Re-entering accepted keeps the original volunteer and timestamp.
	require.NoError(t, req.ApplyStatus(StatusAccepted, second, t2))
	assert.Equal(t, first, *req.VolunteerID)
	assert.Equal(t, t1, *req.Metadata.AcceptedAt)
}

func TestApplyStatusDeliveredSetsCompletedAtOnce(t *testing.T) {
	req := newTestRequest()
	actor := domain.NewUserID()
	t1 := time.Date(2024, 11, 1, 14, 0, 0, 0, time.UTC)
	t2 := t1.Add(30 * time.Minute)

	require.NoError(t, req.ApplyStatus(StatusDelivered, actor, t1))
	require.NotNil(t, req.Metadata.CompletedAt)
	assert.Equal(t, t1, *req.Metadata.CompletedAt)

	require.NoError(t, req.ApplyStatus(StatusEnRouteDelivery, actor, t2))
	require.NoError(t, req.ApplyStatus(StatusDelivered, actor, t2))
	assert.Equal(t, t1, *req.Metadata.CompletedAt)
}

func TestApplyStatusAllowsSkippingStates(t *testing.T) {
	// available -> delivered in one hop is legal; the machine does not
	// enforce a path.
	req := newTestRequest()
	actor := domain.NewUserID()
	now := time.Now().UTC()

	require.NoError(t, req.ApplyStatus(StatusDelivered, actor, now))
	assert.Equal(t, StatusDelivered, req.Status)
	assert.Nil(t, req.Metadata.AcceptedAt)
	require.NotNil(t, req.Metadata.CompletedAt)

	// Moving out of a terminal-looking state is also allowed.
	require.NoError(t, req.ApplyStatus(StatusCancelled, actor, now))
	assert.Equal(t, StatusCancelled, req.Status)
}

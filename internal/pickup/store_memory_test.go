package pickup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlift/pkg/domain"
	"donorlift/pkg/platform/sentinel"
)

func TestInMemoryStoreCreateAndGet(t *testing.T) {
	store := NewInMemoryStore()
	req := newTestRequest()

	require.NoError(t, store.Create(context.Background(), req))
	assert.ErrorIs(t, store.Create(context.Background(), req), sentinel.ErrConflict)

	got, err := store.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)

	_, err = store.Get(context.Background(), domain.NewPickupID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	req := newTestRequest()
	require.NoError(t, store.Create(context.Background(), req))

	got, err := store.Get(context.Background(), req.ID)
	require.NoError(t, err)
	got.Status = StatusCancelled

	again, err := store.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, again.Status)
}

func TestInMemoryStoreUpdateStatusConcurrentAccept(t *testing.T) {
	store := NewInMemoryStore()
	req := newTestRequest()
	require.NoError(t, store.Create(context.Background(), req))

	// Many volunteers race to accept; exactly one binding and one
	// AcceptedAt must survive.
	const racers = 16
	volunteers := make([]domain.UserID, racers)
	times := make([]time.Time, racers)
	base := time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)
	for i := range volunteers {
		volunteers[i] = domain.NewUserID()
		times[i] = base.Add(time.Duration(i) * time.Second)
	}

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.UpdateStatus(context.Background(), req.ID, StatusAccepted, volunteers[i], times[i])
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	require.NotNil(t, got.VolunteerID)
	assert.Contains(t, volunteers, *got.VolunteerID)
	require.NotNil(t, got.Metadata.AcceptedAt)
	assert.Contains(t, times, *got.Metadata.AcceptedAt)
}

func TestInMemoryStoreList(t *testing.T) {
	store := NewInMemoryStore()
	a := newTestRequest()
	a.Priority = PriorityHigh
	b := newTestRequest()
	b.Status = StatusDelivered
	require.NoError(t, store.Create(context.Background(), a))
	require.NoError(t, store.Create(context.Background(), b))

	all, err := store.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	available, err := store.List(context.Background(), StatusAvailable, "")
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, a.ID, available[0].ID)

	high, err := store.List(context.Background(), "", PriorityHigh)
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, a.ID, high[0].ID)
}

package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlift/pkg/domain"
	"donorlift/pkg/platform/sentinel"
)

func alwaysSchedule(volunteerID domain.UserID) *Schedule {
	return &Schedule{
		ID:          domain.NewScheduleID(),
		VolunteerID: volunteerID,
		Kind:        KindAlwaysAvailable,
		Always:      &AlwaysAvailable{},
		IsActive:    true,
	}
}

func TestInMemoryStoreSaveReplacesWholesale(t *testing.T) {
	store := NewInMemoryStore()
	volunteerID := domain.NewUserID()

	first := alwaysSchedule(volunteerID)
	require.NoError(t, store.Save(context.Background(), first))

	second := alwaysSchedule(volunteerID)
	second.Kind = KindRecurringWeekly
	second.Always = nil
	second.Recurring = &RecurringWeekly{Days: []DaySlots{{DayOfWeek: 1}}}
	require.NoError(t, store.Save(context.Background(), second))

	got, err := store.GetByVolunteer(context.Background(), volunteerID)
	require.NoError(t, err)
	assert.Equal(t, KindRecurringWeekly, got.Kind)
	assert.Nil(t, got.Always)
}

func TestInMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	volunteerID := domain.NewUserID()
	require.NoError(t, store.Save(context.Background(), alwaysSchedule(volunteerID)))

	got, err := store.GetByVolunteer(context.Background(), volunteerID)
	require.NoError(t, err)
	got.IsActive = false

	again, err := store.GetByVolunteer(context.Background(), volunteerID)
	require.NoError(t, err)
	assert.True(t, again.IsActive)
}

func TestInMemoryStoreDelete(t *testing.T) {
	store := NewInMemoryStore()
	volunteerID := domain.NewUserID()
	require.NoError(t, store.Save(context.Background(), alwaysSchedule(volunteerID)))

	require.NoError(t, store.Delete(context.Background(), volunteerID))
	_, err := store.GetByVolunteer(context.Background(), volunteerID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.ErrorIs(t, store.Delete(context.Background(), volunteerID), sentinel.ErrNotFound)
}

func TestInMemoryStoreAppendUnavailability(t *testing.T) {
	store := NewInMemoryStore()
	volunteerID := domain.NewUserID()
	require.NoError(t, store.Save(context.Background(), alwaysSchedule(volunteerID)))

	window := Unavailability{
		From:   time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC),
		Reason: "holiday",
	}
	require.NoError(t, store.AppendUnavailability(context.Background(), volunteerID, window))

	got, err := store.GetByVolunteer(context.Background(), volunteerID)
	require.NoError(t, err)
	require.Len(t, got.Unavailability, 1)
	assert.Equal(t, "holiday", got.Unavailability[0].Reason)

	missing := domain.NewUserID()
	err = store.AppendUnavailability(context.Background(), missing, window)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreListActive(t *testing.T) {
	store := NewInMemoryStore()
	active := alwaysSchedule(domain.NewUserID())
	inactive := alwaysSchedule(domain.NewUserID())
	inactive.IsActive = false
	require.NoError(t, store.Save(context.Background(), active))
	require.NoError(t, store.Save(context.Background(), inactive))

	schedules, err := store.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, active.VolunteerID, schedules[0].VolunteerID)
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDInvariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePickupID("not-a-uuid")
		require.Error(t, err)
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseDonationID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, DonationID(valid), id)
	})

	t.Run("round trips through String", func(t *testing.T) {
		id := NewScheduleID()
		parsed, err := ParseScheduleID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})
}

func TestIsZero(t *testing.T) {
	assert.True(t, CharityID{}.IsZero())
	assert.False(t, NewCharityID().IsZero())
}

func TestJSONUsesCanonicalForm(t *testing.T) {
	id := NewPickupID()
	raw, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(raw))

	var decoded PickupID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, id, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &decoded))
}

// TestTypeDistinction verifies the compiler keeps ID types apart.
// The commented assignments would fail to compile:
//
//	var _ UserID = NewPickupID()
//	var _ DonationID = NewCharityID()
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	pickupID := PickupID(uuid.New())
	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(pickupID))
}

package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	nairobi := Point{Lat: -1.2921, Lon: 36.8219}
	assert.Equal(t, 0.0, DistanceKm(nairobi, nairobi))
}

func TestDistanceKm_Symmetric(t *testing.T) {
	points := []struct{ a, b Point }{
		{Point{-1.2921, 36.8219}, Point{-1.3032, 36.8440}},
		{Point{51.5074, -0.1278}, Point{48.8566, 2.3522}},
		{Point{90, 0}, Point{-90, 0}},
	}
	for _, tc := range points {
		assert.Equal(t, DistanceKm(tc.a, tc.b), DistanceKm(tc.b, tc.a))
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	london := Point{Lat: 51.5074, Lon: -0.1278}
	paris := Point{Lat: 48.8566, Lon: 2.3522}
	// Roughly 344 km; the exact Haversine value to one decimal.
	assert.InDelta(t, 343.6, DistanceKm(london, paris), 0.5)
}

func TestDistanceKm_RoundsToOneDecimal(t *testing.T) {
	a := Point{Lat: -1.2921, Lon: 36.8219}
	b := Point{Lat: -1.3032, Lon: 36.8440}
	d := DistanceKm(a, b)
	assert.Equal(t, d, float64(int(d*10))/10)
}

func TestTravelMinutes(t *testing.T) {
	assert.Equal(t, 0, TravelMinutes(0))
	assert.Equal(t, 10, TravelMinutes(5))    // 5 km at 30 km/h
	assert.Equal(t, 60, TravelMinutes(30))   // 30 km at 30 km/h
	assert.Equal(t, 10, TravelMinutes(4.9))  // 9.8 min rounds to 10
	assert.Equal(t, 21, TravelMinutes(10.3)) // 20.6 min rounds to 21
}

func TestParsePair(t *testing.T) {
	t.Run("valid pair", func(t *testing.T) {
		p, err := ParsePair([]float64{-1.2921, 36.8219})
		require.NoError(t, err)
		assert.Equal(t, Point{Lat: -1.2921, Lon: 36.8219}, p)
	})

	t.Run("wrong arity", func(t *testing.T) {
		_, err := ParsePair([]float64{-1.2921})
		assert.Error(t, err)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, err := ParsePair([]float64{91, 0})
		assert.Error(t, err)
	})

	t.Run("longitude out of range", func(t *testing.T) {
		_, err := ParsePair([]float64{0, -181})
		assert.Error(t, err)
	})
}

func TestPointJSON_LatLonOrder(t *testing.T) {
	p := Point{Lat: -1.2921, Lon: 36.8219}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[-1.2921, 36.8219]`, string(b))

	var back Point
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p, back)
}

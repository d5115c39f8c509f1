// Package geo provides the great-circle distance math used to rank and filter
// pickup requests.
//
// Coordinates are carried as [lat, lon] pairs everywhere in this codebase,
// including persisted and wire shapes. This is inverted relative to the
// GeoJSON-style [lon, lat] convention; the inversion is deliberate and must be
// preserved end-to-end, because mixing conventions in a single component is
// exactly how proximity queries go quietly wrong.
package geo

import (
	"encoding/json"
	"math"

	dErrors "donorlift/pkg/domain-errors"
)

const (
	// earthRadiusKm is the mean radius of Earth in kilometers.
	earthRadiusKm = 6371.0

	// averageSpeedKmph is the assumed average city driving speed, used for
	// advisory travel-time estimates when no routing engine is available.
	averageSpeedKmph = 30.0
)

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// ParsePair builds a Point from a [lat, lon] pair, rejecting malformed input.
func ParsePair(pair []float64) (Point, error) {
	if len(pair) != 2 {
		return Point{}, dErrors.New(dErrors.CodeBadRequest, "coordinates must be a [lat, lon] pair")
	}
	p := Point{Lat: pair[0], Lon: pair[1]}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate rejects coordinates outside valid degree ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return dErrors.New(dErrors.CodeBadRequest, "coordinates must be numbers")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return dErrors.New(dErrors.CodeBadRequest, "latitude must be between -90 and 90")
	}
	if p.Lon < -180 || p.Lon > 180 {
		return dErrors.New(dErrors.CodeBadRequest, "longitude must be between -180 and 180")
	}
	return nil
}

// Pair returns the point in the project-wide [lat, lon] order.
func (p Point) Pair() []float64 { return []float64{p.Lat, p.Lon} }

// MarshalJSON emits the [lat, lon] pair form.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Pair())
}

// UnmarshalJSON accepts the [lat, lon] pair form and validates ranges.
func (p *Point) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "coordinates must be a [lat, lon] pair")
	}
	parsed, err := ParsePair(pair)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// DistanceKm returns the Haversine great-circle distance between two points,
// rounded to one decimal place. Pure and symmetric; callers validate inputs.
func DistanceKm(a, b Point) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLon*sinLon

	d := 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
	return math.Round(d*10) / 10
}

// TravelMinutes estimates direct travel time for a distance at the assumed
// average speed, rounded to the nearest minute. Advisory only.
func TravelMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm / averageSpeedKmph * 60))
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

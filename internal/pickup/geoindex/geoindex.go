// Package geoindex maintains a Redis GEO index over pickup coordinates so the
// listing path can pre-narrow candidates before exact distance math.
//
// Boundary note: this codebase carries coordinates as [lat, lon], while the
// Redis GEO commands take longitude first. The flip happens here and only
// here; callers never hand Redis a raw pair.
package geoindex

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"donorlift/internal/geo"
	"donorlift/pkg/domain"
)

const key = "pickup:geo"

// Index is an optional accelerator: the exact Haversine check downstream
// remains authoritative, so a stale index can only over-include, never
// report a wrong distance.
type Index struct {
	client *redis.Client
}

func New(client *redis.Client) *Index {
	return &Index{client: client}
}

// Add registers or refreshes a pickup request's location.
func (i *Index) Add(ctx context.Context, id domain.PickupID, p geo.Point) error {
	err := i.client.GeoAdd(ctx, key, &redis.GeoLocation{
		Name:      id.String(),
		Longitude: p.Lon,
		Latitude:  p.Lat,
	}).Err()
	if err != nil {
		return fmt.Errorf("geoadd pickup: %w", err)
	}
	return nil
}

// Remove drops a request from the index, e.g. once delivered or cancelled.
func (i *Index) Remove(ctx context.Context, id domain.PickupID) error {
	if err := i.client.ZRem(ctx, key, id.String()).Err(); err != nil {
		return fmt.Errorf("remove pickup from geo index: %w", err)
	}
	return nil
}

// Within returns the ids of indexed requests inside radiusKm of center.
func (i *Index) Within(ctx context.Context, center geo.Point, radiusKm float64) (map[domain.PickupID]struct{}, error) {
	names, err := i.client.GeoSearch(ctx, key, &redis.GeoSearchQuery{
		Longitude:  center.Lon,
		Latitude:   center.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geosearch pickups: %w", err)
	}

	ids := make(map[domain.PickupID]struct{}, len(names))
	for _, name := range names {
		id, err := domain.ParsePickupID(name)
		if err != nil {
			// Foreign entries in the key are skipped, not fatal.
			continue
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

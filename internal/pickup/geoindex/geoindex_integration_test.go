//go:build integration

package geoindex_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"donorlift/internal/geo"
	"donorlift/internal/pickup/geoindex"
	"donorlift/pkg/domain"
	"donorlift/pkg/testutil/containers"
)

type GeoIndexSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	index *geoindex.Index
}

func TestGeoIndexSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(GeoIndexSuite))
}

func (s *GeoIndexSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.index = geoindex.New(s.redis.Client)
}

func (s *GeoIndexSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *GeoIndexSuite) TestWithinFindsNearbyOnly() {
	ctx := context.Background()
	nairobi := geo.Point{Lat: -1.2864, Lon: 36.8172}
	near := domain.NewPickupID()
	far := domain.NewPickupID()

	// Roughly 2 km and 40 km from the center.
	s.Require().NoError(s.index.Add(ctx, near, geo.Point{Lat: -1.2684, Lon: 36.8172}))
	s.Require().NoError(s.index.Add(ctx, far, geo.Point{Lat: -0.9264, Lon: 36.8172}))

	within, err := s.index.Within(ctx, nairobi, 5)
	s.Require().NoError(err)
	s.Contains(within, near)
	s.NotContains(within, far)
}

func (s *GeoIndexSuite) TestRemove() {
	ctx := context.Background()
	center := geo.Point{Lat: 0, Lon: 0}
	id := domain.NewPickupID()

	s.Require().NoError(s.index.Add(ctx, id, geo.Point{Lat: 0.001, Lon: 0.001}))
	within, err := s.index.Within(ctx, center, 1)
	s.Require().NoError(err)
	s.Contains(within, id)

	s.Require().NoError(s.index.Remove(ctx, id))
	within, err = s.index.Within(ctx, center, 1)
	s.Require().NoError(err)
	s.NotContains(within, id)
}

func (s *GeoIndexSuite) TestWithinEmptyIndex() {
	within, err := s.index.Within(context.Background(), geo.Point{Lat: 10, Lon: 10}, 50)
	s.Require().NoError(err)
	s.Empty(within)
}

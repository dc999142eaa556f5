//go:build integration

package geocode_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"roam/internal/geocode"
	"roam/internal/platform/logger"
	"roam/pkg/testutil/containers"
)

type countingResolver struct {
	calls  int
	region string
}

func (r *countingResolver) Resolve(ctx context.Context, coord geocode.Coordinate) (string, error) {
	r.calls++
	return r.region, nil
}

type CacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CacheSuite) TestCacheHitSkipsProvider() {
	inner := &countingResolver{region: "Finland"}
	resolver := geocode.NewCached(inner, s.redis.Client, time.Hour, logger.New(logger.ParseLevel("error")))

	ctx := context.Background()
	coord := geocode.Coordinate{Latitude: 60.1699, Longitude: 24.9384}

	region, err := resolver.Resolve(ctx, coord)
	s.Require().NoError(err)
	s.Equal("Finland", region)
	s.Equal(1, inner.calls)

	region, err = resolver.Resolve(ctx, coord)
	s.Require().NoError(err)
	s.Equal("Finland", region)
	s.Equal(1, inner.calls)
}

func (s *CacheSuite) TestCoarseKeySharesNearbyFixes() {
	inner := &countingResolver{region: "Sweden"}
	resolver := geocode.NewCached(inner, s.redis.Client, time.Hour, logger.New(logger.ParseLevel("error")))

	ctx := context.Background()

	// Two fixes inside the same ~1km cell resolve through one provider call.
	_, err := resolver.Resolve(ctx, geocode.Coordinate{Latitude: 59.3293, Longitude: 18.0686})
	s.Require().NoError(err)
	_, err = resolver.Resolve(ctx, geocode.Coordinate{Latitude: 59.3294, Longitude: 18.0687})
	s.Require().NoError(err)
	s.Equal(1, inner.calls)
}

func (s *CacheSuite) TestNilClientDisablesCaching() {
	inner := &countingResolver{region: "Norway"}
	resolver := geocode.NewCached(inner, nil, time.Hour, nil)
	s.Same(inner, resolver)
}

//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"roam/internal/store"
	"roam/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresConfigStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var err error
	s.store, err = store.NewPostgres(s.postgres.DB, store.WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "monitor_config", "region_changes"))
}

func (s *PostgresStoreSuite) TestLoadDefaults() {
	cfg, err := s.store.Load(context.Background())
	s.Require().NoError(err)
	s.False(cfg.Enabled)
	s.Empty(cfg.LastKnownRegion)
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetEnabled(ctx, true))
	s.Require().NoError(s.store.SetLastRegion(ctx, "Finland"))

	cfg, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.True(cfg.Enabled)
	s.Equal("Finland", cfg.LastKnownRegion)

	// Upsert, not insert: repeated writes keep one row per key.
	s.Require().NoError(s.store.SetEnabled(ctx, false))
	cfg, err = s.store.Load(ctx)
	s.Require().NoError(err)
	s.False(cfg.Enabled)
}

func (s *PostgresStoreSuite) TestHistoryTrail() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetLastRegion(ctx, "Finland"))
	s.now = s.now.Add(time.Hour)
	s.Require().NoError(s.store.SetLastRegion(ctx, "Sweden"))
	s.now = s.now.Add(time.Hour)
	s.Require().NoError(s.store.SetLastRegion(ctx, "Norway"))

	changes, err := s.store.History(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(changes, 3)

	// Newest first.
	s.Equal("Norway", changes[0].Region)
	s.Equal("Sweden", changes[0].Previous)
	s.Equal("Sweden", changes[1].Region)
	s.Equal("Finland", changes[1].Previous)
	s.Equal("Finland", changes[2].Region)
	s.Empty(changes[2].Previous)

	s.True(changes[0].ChangedAt.After(changes[1].ChangedAt))
}

func (s *PostgresStoreSuite) TestHistoryLimit() {
	ctx := context.Background()

	for _, region := range []string{"Finland", "Sweden", "Norway", "Denmark"} {
		s.Require().NoError(s.store.SetLastRegion(ctx, region))
	}

	changes, err := s.store.History(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(changes, 2)
	s.Equal("Denmark", changes[0].Region)
	s.Equal("Norway", changes[1].Region)
}

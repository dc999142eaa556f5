package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresConfigStore persists MonitorConfig in PostgreSQL and additionally
// appends every region change to a history table, giving ops a durable trail
// the key-value backends do not keep.
type PostgresConfigStore struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresOption configures a PostgresConfigStore instance.
type PostgresOption func(*PostgresConfigStore)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) PostgresOption {
	return func(s *PostgresConfigStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// OpenPostgres opens a database handle using the pq driver and verifies the
// connection.
func OpenPostgres(dsn string) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// NewPostgres constructs a PostgreSQL-backed config store and ensures its
// schema exists.
func NewPostgres(db *sql.DB, opts ...PostgresOption) (*PostgresConfigStore, error) {
	s := &PostgresConfigStore{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresConfigStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS monitor_config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS region_changes (
	id         BIGSERIAL PRIMARY KEY,
	previous   TEXT NOT NULL,
	region     TEXT NOT NULL,
	changed_at TIMESTAMPTZ NOT NULL
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresConfigStore) Load(ctx context.Context) (MonitorConfig, error) {
	var cfg MonitorConfig

	var enabled string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM monitor_config WHERE key = $1`, KeyEnabled).Scan(&enabled)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return MonitorConfig{}, fmt.Errorf("load enabled: %w", err)
	}
	cfg.Enabled = enabled == "1"

	var region string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM monitor_config WHERE key = $1`, KeyLastRegion).Scan(&region)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return MonitorConfig{}, fmt.Errorf("load last region: %w", err)
	}
	cfg.LastKnownRegion = region

	return cfg, nil
}

func (s *PostgresConfigStore) SetEnabled(ctx context.Context, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	if err := s.upsert(ctx, s.db, KeyEnabled, v); err != nil {
		return fmt.Errorf("persist enabled: %w", err)
	}
	return nil
}

// SetLastRegion upserts the key and appends to the history table in one
// transaction so the trail never disagrees with the current value.
func (s *PostgresConfigStore) SetLastRegion(ctx context.Context, region string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin region update: %w", err)
	}
	defer tx.Rollback()

	var previous string
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM monitor_config WHERE key = $1`, KeyLastRegion).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read previous region: %w", err)
	}

	if err := s.upsert(ctx, tx, KeyLastRegion, region); err != nil {
		return fmt.Errorf("persist last region: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO region_changes (previous, region, changed_at) VALUES ($1, $2, $3)`,
		previous, region, s.clock().UTC())
	if err != nil {
		return fmt.Errorf("append region change: %w", err)
	}

	return tx.Commit()
}

// RegionChange is one row of the history trail.
type RegionChange struct {
	Previous  string    `json:"previous"`
	Region    string    `json:"region"`
	ChangedAt time.Time `json:"changedAt"`
}

// History returns the most recent region changes, newest first.
func (s *PostgresConfigStore) History(ctx context.Context, limit int) ([]RegionChange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT previous, region, changed_at FROM region_changes ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query region history: %w", err)
	}
	defer rows.Close()

	var changes []RegionChange
	for rows.Next() {
		var c RegionChange
		if err := rows.Scan(&c.Previous, &c.Region, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan region change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresConfigStore) upsert(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO monitor_config (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

// Package history keeps a sqlite log of every source run, the snapshot files
// only ever hold the latest state.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"time"

	"cryptorewards-backend/internal/collector"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

var _ collector.HistoryWriter = (*Store)(nil)

// Open opens (or creates) the database at path and applies the schema,
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// sqlite allows a single writer, and every in-memory connection is its
	// own database
	database.SetMaxOpenConns(1)

	if path != ":memory:" {
		_, err = database.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}
	return prepare(database)
}

// OpenRemote connects to a libsql server, ex. "libsql://rewards.turso.io".
func OpenRemote(rawUrl, authToken string) (*Store, error) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return nil, fmt.Errorf("parse history url: %w", err)
	}
	if authToken != "" {
		values := u.Query()
		values.Set("authToken", authToken)
		u.RawQuery = values.Encode()
	}
	database, err := sql.Open("libsql", u.String())
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return prepare(database)
}

func prepare(database *sql.DB) (*Store, error) {
	_, err := database.Exec(Schema)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return NewStore(database), nil
}

// NewStore wraps a database that already has the schema applied.
func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) Record(ctx context.Context, run collector.RunRecord) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into source_run(
			cycle_id, source, ok, staking_offers, campaigns, started_at, finished_at, error
		) values (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CycleID,
		run.Source,
		boolInt(run.OK),
		run.StakingOffers,
		run.Campaigns,
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("record run of %s: %w", run.Source, err)
	}
	return nil
}

const selectRuns = `select cycle_id, source, ok, staking_offers, campaigns, started_at, finished_at, error
from source_run`

func (s *Store) query(ctx context.Context, query string, args ...any) ([]collector.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []collector.RunRecord{}
	for rows.Next() {
		var run collector.RunRecord
		var ok int
		var started, finished int64
		err := rows.Scan(
			&run.CycleID,
			&run.Source,
			&ok,
			&run.StakingOffers,
			&run.Campaigns,
			&started,
			&finished,
			&run.Error,
		)
		if err != nil {
			return nil, err
		}
		run.OK = ok != 0
		run.StartedAt = time.UnixMilli(started)
		run.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Recent returns the latest runs of every source, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]collector.RunRecord, error) {
	return s.query(
		ctx,
		selectRuns+` order by started_at desc, id desc limit ?`,
		limit,
	)
}

// ForSource returns the latest runs of one source, newest first.
func (s *Store) ForSource(ctx context.Context, source string, limit int) ([]collector.RunRecord, error) {
	return s.query(
		ctx,
		selectRuns+` where source = ? order by started_at desc, id desc limit ?`,
		source,
		limit,
	)
}

// SourceStats summarizes the runs of a source.
type SourceStats struct {
	Source      string    `json:"source"`
	Runs        int       `json:"runs"`
	Succeeded   int       `json:"succeeded"`
	LastRunAt   time.Time `json:"lastRunAt"`
	LastSuccess time.Time `json:"lastSuccess"`
}

// Stats returns per source totals, sorted by source.
func (s *Store) Stats(ctx context.Context) ([]SourceStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		select
			source,
			count(*),
			coalesce(sum(ok), 0),
			max(started_at),
			coalesce(max(case when ok = 1 then started_at end), 0)
		from source_run
		group by source
		order by source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []SourceStats{}
	for rows.Next() {
		var st SourceStats
		var lastRun, lastSuccess int64
		err := rows.Scan(&st.Source, &st.Runs, &st.Succeeded, &lastRun, &lastSuccess)
		if err != nil {
			return nil, err
		}
		st.LastRunAt = time.UnixMilli(lastRun)
		if lastSuccess > 0 {
			st.LastSuccess = time.UnixMilli(lastSuccess)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Prune deletes runs that started before the given time and returns how
// many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `delete from source_run where started_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

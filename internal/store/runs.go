package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord is one completed harness run.
type RunRecord struct {
	ID        string        `json:"id"`
	Suite     string        `json:"suite"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
	Passed    uint          `json:"passed"`
	Failed    uint          `json:"failed"`
}

// Ok reports whether the recorded run had no failures.
func (r RunRecord) Ok() bool {
	return r.Failed == 0
}

// WriteRun records one completed run and returns its generated id.
func (s *Store) WriteRun(ctx context.Context, rec RunRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, suite, started_at, elapsed_ms, passed, failed)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Suite,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.Elapsed.Milliseconds(),
		rec.Passed,
		rec.Failed,
	)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}
	return rec.ID, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive
// limit returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, suite, started_at, elapsed_ms, passed, failed
		FROM runs
		ORDER BY started_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var (
			rec       RunRecord
			startedAt string
			elapsedMS int64
		)
		if err := rows.Scan(&rec.ID, &rec.Suite, &startedAt, &elapsedMS, &rec.Passed, &rec.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return recs, nil
}

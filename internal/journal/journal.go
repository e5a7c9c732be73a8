// Package journal stores a record of every signed GPay call and how its
// response verification ended.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexbotov/gpay/pkg/gpay"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Entry is one stored call
type Entry struct {
	ID               string
	Operation        string
	Path             string
	Environment      string
	RequestTimestamp string
	StatusCode       int
	Outcome          gpay.Outcome
	Error            string
	StartedAt        time.Time
	Duration         time.Duration
}

// Service writes and reads the call journal. It implements gpay.Recorder.
type Service struct {
	db          *sql.DB
	environment string
	newID       func() string
}

var _ gpay.Recorder = (*Service)(nil)

// Option configures a Service
type Option func(*Service)

// WithEnvironment tags every entry with the deployment it was sent to
func WithEnvironment(base gpay.BaseURL) Option {
	return func(s *Service) {
		s.environment = base.String()
	}
}

// WithIDGenerator replaces uuid generation
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// New creates a journal service
func New(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:    db,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stores rec
func (s *Service) Record(ctx context.Context, rec *gpay.CallRecord) error {
	if rec == nil {
		return errors.New("journal: nil record")
	}

	startedAt := rec.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	var callErr sql.NullString
	if rec.Error != "" {
		callErr = sql.NullString{String: rec.Error, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_journal (id, operation, path, environment, request_timestamp, status_code, outcome, error, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.newID(), rec.Operation, rec.Path, s.environment, rec.RequestTimestamp, rec.StatusCode,
		string(rec.Outcome), callErr, startedAt.UTC(), rec.Duration.Milliseconds())

	return errors.Wrap(err, "journal: insert")
}

// Filter defines criteria for listing entries
type Filter struct {
	Operation string
	Outcome   gpay.Outcome
	From      time.Time
	To        time.Time
	Limit     int
}

// Entries lists entries newest first. A nil filter returns the latest 100.
func (s *Service) Entries(ctx context.Context, filter *Filter) ([]*Entry, error) {
	query := `SELECT id, operation, path, environment, request_timestamp, status_code, outcome, error, started_at, duration_ms
			  FROM call_journal WHERE 1=1`
	args := []interface{}{}
	paramIdx := 1

	if filter != nil {
		if filter.Operation != "" {
			query += fmt.Sprintf(" AND operation = $%d", paramIdx)
			args = append(args, filter.Operation)
			paramIdx++
		}
		if filter.Outcome != "" {
			query += fmt.Sprintf(" AND outcome = $%d", paramIdx)
			args = append(args, string(filter.Outcome))
			paramIdx++
		}
		if !filter.From.IsZero() {
			query += fmt.Sprintf(" AND started_at >= $%d", paramIdx)
			args = append(args, filter.From.UTC())
			paramIdx++
		}
		if !filter.To.IsZero() {
			query += fmt.Sprintf(" AND started_at <= $%d", paramIdx)
			args = append(args, filter.To.UTC())
			paramIdx++
		}
	}

	query += " ORDER BY started_at DESC"

	if filter != nil && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", paramIdx)
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "journal: query")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e          Entry
			outcome    string
			callErr    sql.NullString
			durationMs int64
		)
		if err := rows.Scan(&e.ID, &e.Operation, &e.Path, &e.Environment, &e.RequestTimestamp,
			&e.StatusCode, &outcome, &callErr, &e.StartedAt, &durationMs); err != nil {
			return nil, errors.Wrap(err, "journal: scan")
		}
		e.Outcome = gpay.Outcome(outcome)
		e.Error = callErr.String
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, &e)
	}

	return entries, errors.Wrap(rows.Err(), "journal: rows")
}

// Summary counts entries per outcome since from
func (s *Service) Summary(ctx context.Context, from time.Time) (map[gpay.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*) FROM call_journal
		WHERE started_at >= $1
		GROUP BY outcome
	`, from.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "journal: summary")
	}
	defer rows.Close()

	counts := make(map[gpay.Outcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, errors.Wrap(err, "journal: scan summary")
		}
		counts[gpay.Outcome(outcome)] = n
	}

	return counts, errors.Wrap(rows.Err(), "journal: rows")
}

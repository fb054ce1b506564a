// # internal/data/history/store.go
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vreport/internal/core/errors"
	"vreport/internal/engine/results"
)

const (
	driverName      = "sqlite"
	maxAttempts     = 5
	// Fixed-width so that stored timestamps sort lexicographically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Run is one published report, with the counters needed to list runs without
// decoding the stored envelope.
type Run struct {
	ID                string         `json:"id" yaml:"id"`
	CreatedAt         time.Time      `json:"createdAt" yaml:"createdAt"`
	RepositoryOwner   string         `json:"repositoryOwner" yaml:"repositoryOwner"`
	RepositoryName    string         `json:"repositoryName" yaml:"repositoryName"`
	PRNumber          string         `json:"prNumber" yaml:"prNumber"`
	WorkflowID        string         `json:"workflowId" yaml:"workflowId"`
	BranchName        string         `json:"branchName" yaml:"branchName"`
	ExpectationCommit string         `json:"expectationCommit" yaml:"expectationCommit"`
	ActualCommit      string         `json:"actualCommit" yaml:"actualCommit"`
	FailureCount      int            `json:"failureCount" yaml:"failureCount"`
	ComponentCount    int            `json:"componentCount" yaml:"componentCount"`
	SkippedCount      int            `json:"skippedCount" yaml:"skippedCount"`
	DuplicateCount    int            `json:"duplicateCount" yaml:"duplicateCount"`
	Report            results.Report `json:"report,omitempty" yaml:"report,omitempty"`
}

// NewRun derives a run from a report envelope.
func NewRun(report results.Report, skipped, duplicates int) Run {
	return Run{
		ID:                uuid.NewString(),
		CreatedAt:         time.Now().UTC(),
		RepositoryOwner:   report.RepositoryOwner,
		RepositoryName:    report.RepositoryName,
		PRNumber:          report.PRNumber,
		WorkflowID:        report.WorkflowID,
		BranchName:        report.BranchName,
		ExpectationCommit: report.ExpectationMetadata.CommitReference,
		ActualCommit:      report.ActualMetadata.CommitReference,
		FailureCount:      len(report.Results),
		ComponentCount:    len(report.ImpactedComponents),
		SkippedCount:      skipped,
		DuplicateCount:    duplicates,
		Report:            report,
	}
}

type ListOptions struct {
	Branch string
	Limit  int
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun stores run and its per-component failure counts. A run saved again
// under the same id replaces the earlier row.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	blob, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	perComponent := make(map[string]int)
	for _, rec := range run.Report.Results {
		perComponent[rec.ComponentTagName]++
	}

	return s.withRetry("save run", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (
  id, created_at_utc, repository_owner, repository_name, pr_number, workflow_id, branch_name,
  expectation_commit, actual_commit, failure_count, component_count, skipped_count, duplicate_count, report_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.CreatedAt.UTC().Format(timestampLayout),
			run.RepositoryOwner,
			run.RepositoryName,
			run.PRNumber,
			run.WorkflowID,
			run.BranchName,
			run.ExpectationCommit,
			run.ActualCommit,
			run.FailureCount,
			run.ComponentCount,
			run.SkippedCount,
			run.DuplicateCount,
			string(blob),
		); err != nil {
			return err
		}
		for component, count := range perComponent {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_components (run_id, component_tag_name, failure_count) VALUES (?, ?, ?)`,
				run.ID, component, count,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

const runColumns = `
  id, created_at_utc, repository_owner, repository_name, pr_number, workflow_id, branch_name,
  expectation_commit, actual_commit, failure_count, component_count, skipped_count, duplicate_count`

// ListRuns returns runs newest first, without their report payload.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := "SELECT" + runColumns + " FROM runs"
	args := make([]any, 0, 2)
	if branch := strings.TrimSpace(opts.Branch); branch != "" {
		query += " WHERE branch_name = ?"
		args = append(args, branch)
	}
	query += " ORDER BY created_at_utc DESC, id ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows *sql.Rows
	err := s.withRetry("list runs", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its stored report.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		run  Run
		blob string
	)
	err := s.withRetry("get run", func() error {
		row := s.db.QueryRowContext(ctx, "SELECT"+runColumns+", report_json FROM runs WHERE id = ?", id)
		var scanErr error
		run, scanErr = scanRun(row, &blob)
		return scanErr
	})
	if stderrors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.AddContext(errors.New(errors.CodeNotFound, "run not found"), "run_id", id)
	}
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(blob), &run.Report); err != nil {
		return Run{}, fmt.Errorf("decode stored report %s: %w", id, err)
	}
	return run, nil
}

// ComponentFailures returns how many recorded runs each component failed in.
func (s *Store) ComponentFailures(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("component failures", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT component_tag_name, COUNT(DISTINCT run_id)
FROM run_components
GROUP BY component_tag_name`)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan component row: %w", err)
		}
		out[name] = count
	}
	return out, rows.Err()
}

// Prune keeps the newest keep runs and deletes the rest.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	var affected int64
	err := s.withRetry("prune runs", func() error {
		res, err := s.db.ExecContext(ctx, `
DELETE FROM runs WHERE id NOT IN (
  SELECT id FROM runs ORDER BY created_at_utc DESC, id ASC LIMIT ?
)`, keep)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, extra ...any) (Run, error) {
	var (
		run   Run
		tsRaw string
	)
	dest := []any{
		&run.ID,
		&tsRaw,
		&run.RepositoryOwner,
		&run.RepositoryName,
		&run.PRNumber,
		&run.WorkflowID,
		&run.BranchName,
		&run.ExpectationCommit,
		&run.ActualCommit,
		&run.FailureCount,
		&run.ComponentCount,
		&run.SkippedCount,
		&run.DuplicateCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run row: %w", err)
	}
	ts, err := time.Parse(timestampLayout, tsRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
	}
	run.CreatedAt = ts.UTC()
	return run, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	if stderrors.Is(lastErr, sql.ErrNoRows) {
		return lastErr
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || stderrors.Is(err, os.ErrInvalid)
}

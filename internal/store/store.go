// File: internal/store/store.go

// Package store persists finished scans to PostgreSQL so scores can be
// compared across runs. Persistence is optional; the CLI only constructs a
// Store when a database URL is configured.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// ScanSummary is one row of scan history.
type ScanSummary struct {
	ScanID    string
	Project   string
	Timestamp time.Time
	Score     int
	Points    int
	Findings  int
}

// Store provides the PostgreSQL scan-history repository.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const insertScanSQL = `
        INSERT INTO scans (id, project, created_at, score, points, deep_audit)
        VALUES ($1, $2, $3, $4, $5, $6);
    `

// SaveReport writes the scan row and its findings in one transaction.
func (s *Store) SaveReport(ctx context.Context, envelope *schemas.ReportEnvelope) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after a successful commit returns ErrTxClosed; that is
		// not a failure.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if _, err := tx.Exec(ctx, insertScanSQL,
		envelope.ScanID, envelope.Project, envelope.Timestamp.UTC(),
		envelope.Result.Score, envelope.Result.Points, envelope.DeepAudit,
	); err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	if !envelope.Result.Details.Empty() {
		if err := s.persistFindings(ctx, tx, envelope.ScanID, envelope.Result.Details); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// persistFindings bulk-inserts every finding as (category, severity, payload).
// The payload keeps the full finding as JSON so the schema survives finding
// shape changes.
func (s *Store) persistFindings(ctx context.Context, tx pgx.Tx, scanID string, details schemas.FindingDetails) error {
	var rows [][]interface{}

	appendRow := func(category string, severity schemas.Severity, finding any) error {
		payload, err := json.Marshal(finding)
		if err != nil {
			return fmt.Errorf("failed to marshal %s finding: %w", category, err)
		}
		rows = append(rows, []interface{}{scanID, category, string(severity), payload})
		return nil
	}

	for _, v := range details.Vulns {
		if err := appendRow("vuln", v.ResolvedSeverity, v); err != nil {
			return err
		}
	}
	for _, sec := range details.Secrets {
		if err := appendRow("secret", sec.ResolvedSeverity, sec); err != nil {
			return err
		}
	}
	for _, c := range details.Configs {
		if err := appendRow("config", c.ResolvedSeverity, c); err != nil {
			return err
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"scan_findings"},
		[]string{"scan_id", "category", "severity", "payload"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy findings: %w", err)
	}
	if int(copyCount) != len(rows) {
		return fmt.Errorf("mismatch in copied findings count: expected %d, got %d", len(rows), copyCount)
	}

	return nil
}

// History returns the most recent scans for a project, newest first.
func (s *Store) History(ctx context.Context, project string, limit int) ([]ScanSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT s.id, s.project, s.created_at, s.score, s.points,
               (SELECT COUNT(*) FROM scan_findings f WHERE f.scan_id = s.id) AS findings
        FROM scans s
        WHERE s.project = $1
        ORDER BY s.created_at DESC
        LIMIT $2;
    `
	rows, err := s.pool.Query(ctx, query, project, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var history []ScanSummary
	for rows.Next() {
		var summary ScanSummary
		if err := rows.Scan(
			&summary.ScanID, &summary.Project, &summary.Timestamp,
			&summary.Score, &summary.Points, &summary.Findings,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return history, nil
}

package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/lib/pq"

	"leadscore/internal/leads"
)

// WritePostgres replaces table in the database at dsn with ds, loading rows with COPY.
func WritePostgres(ctx context.Context, dsn, table string, ds leads.Dataset, logger *slog.Logger) error {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	if err := pingWithRetry(ctx, db, logger); err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range createStatements(table, ds.Columns) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	copyStmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, ds.Columns...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for _, r := range ds.Rows {
		if _, err := copyStmt.ExecContext(ctx, rowArgs(ds.Columns, r)...); err != nil {
			copyStmt.Close()
			return fmt.Errorf("copy %v: %w", r[leads.ColCompanyName], err)
		}
	}
	if _, err := copyStmt.ExecContext(ctx); err != nil {
		copyStmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := copyStmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	for _, stmt := range indexStatements(table, ds.Columns) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Info("postgres table written", "table", table, "rows", ds.Len())
	return nil
}

func pingWithRetry(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(500*time.Millisecond),
		retry.MaxJitter(250*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("postgres not ready, retrying", "attempt", n+1, "error", err)
		}),
	)
}

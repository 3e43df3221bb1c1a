package sink

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"leadscore/internal/leads"
)

// WriteSQLite replaces the database at path with a single table of ds.
func WriteSQLite(path, table string, ds leads.Dataset) error {
	if table == "" {
		table = DefaultTable
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range createStatements(table, ds.Columns) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(ds.Columns)), ",")
	ins, err := tx.Prepare(`INSERT INTO ` + quoteIdent(table) + ` (` + joinIdents(ds.Columns) + `) VALUES (` + ph + `)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, r := range ds.Rows {
		if _, err := ins.Exec(rowArgs(ds.Columns, r)...); err != nil {
			return fmt.Errorf("insert %v: %w", r[leads.ColCompanyName], err)
		}
	}
	for _, stmt := range indexStatements(table, ds.Columns) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return tx.Commit()
}

func createStatements(table string, cols []string) []string {
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		defs = append(defs, quoteIdent(c)+" "+columnType(c))
	}
	return []string{
		`DROP TABLE IF EXISTS ` + quoteIdent(table),
		`CREATE TABLE ` + quoteIdent(table) + ` (` + strings.Join(defs, ",") + `)`,
	}
}

func indexStatements(table string, cols []string) []string {
	var out []string
	for _, c := range []string{leads.ColCompanyName, leads.ColScore} {
		if !contains(cols, c) {
			continue
		}
		idx := quoteIdent("idx_" + table + "_" + c)
		out = append(out, `CREATE INDEX IF NOT EXISTS `+idx+` ON `+quoteIdent(table)+`(`+quoteIdent(c)+`)`)
	}
	return out
}

func rowArgs(cols []string, r leads.Row) []any {
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = sqlValue(c, r[c])
	}
	return args
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func joinIdents(cols []string) string {
	q := make([]string, len(cols))
	for i, c := range cols {
		q[i] = quoteIdent(c)
	}
	return strings.Join(q, ",")
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Package store reads scored leads back from the SQLite output.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"leadscore/internal/leads"
	"leadscore/internal/sink"
)

// ErrNotFound is returned when no lead has the requested company name.
var ErrNotFound = errors.New("lead not found")

type Lead map[string]any

// Store is a read-only view of one leads table.
type Store struct {
	db    *sql.DB
	table string
	cols  []string
}

// Open opens the database at path. An empty table means sink.DefaultTable.
func Open(path, table string) (*Store, error) {
	if table == "" {
		table = sink.DefaultTable
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite path: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	cols, err := tableColumns(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, required := range []string{leads.ColCompanyName, leads.ColScore} {
		if !contains(cols, required) {
			db.Close()
			return nil, fmt.Errorf("table %q has no %q column", table, required)
		}
	}
	return &Store{db: db, table: table, cols: cols}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Columns returns the table's columns in table order.
func (s *Store) Columns() []string { return append([]string(nil), s.cols...) }

// Count returns the number of leads.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoteIdent(s.table)).Scan(&n)
	return n, err
}

// Top returns leads ordered by score, highest first, then by company name.
func (s *Store) Top(ctx context.Context, limit, offset int) ([]Lead, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC, %s LIMIT ? OFFSET ?`,
		joinIdents(s.cols), quoteIdent(s.table), quoteIdent(leads.ColScore), quoteIdent(leads.ColCompanyName))
	return s.query(ctx, q, limit, offset)
}

// ByName returns the lead with the given company name.
func (s *Store) ByName(ctx context.Context, name string) (Lead, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? LIMIT 1`,
		joinIdents(s.cols), quoteIdent(s.table), quoteIdent(leads.ColCompanyName))
	out, err := s.query(ctx, q, name)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out[0], nil
}

// Search returns leads whose company name starts with prefix, best scores first.
func (s *Store) Search(ctx context.Context, prefix string, limit, offset int) ([]Lead, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s LIKE ? ESCAPE '\' ORDER BY %s DESC, %s LIMIT ? OFFSET ?`,
		joinIdents(s.cols), quoteIdent(s.table), quoteIdent(leads.ColCompanyName),
		quoteIdent(leads.ColScore), quoteIdent(leads.ColCompanyName))
	return s.query(ctx, q, escapeLikePattern(prefix)+"%", limit, offset)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Lead, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lead
	values := make([]any, len(s.cols))
	scans := make([]any, len(s.cols))
	for i := range values {
		scans[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scans...); err != nil {
			return nil, err
		}
		l := make(Lead, len(s.cols))
		for i, c := range s.cols {
			l[c] = normalizeValue(c, values[i])
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func tableColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns found for table %q", table)
	}
	return cols, nil
}

// normalizeValue turns driver values into JSON-friendly ones. Nested item
// lists were stored as JSON text and are decoded again; boolean signal columns
// come back as true/false.
func normalizeValue(col string, v any) any {
	switch t := v.(type) {
	case []byte:
		return normalizeValue(col, string(t))
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case int64:
		if col == leads.ColHasTargetLabel || col == leads.ColIsTargetIndustry {
			return t != 0
		}
		return t
	case string:
		if col == leads.ColItems && (strings.HasPrefix(t, "[") || strings.HasPrefix(t, "{")) {
			var nested any
			if err := json.Unmarshal([]byte(t), &nested); err == nil {
				return nested
			}
		}
		return t
	default:
		return v
	}
}

func escapeLikePattern(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func joinIdents(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = quoteIdent(c)
	}
	return strings.Join(parts, ", ")
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

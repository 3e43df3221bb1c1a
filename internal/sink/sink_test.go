package sink

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"leadscore/internal/leads"
)

func scoredDataset() leads.Dataset {
	return leads.Dataset{
		Columns: []string{
			leads.ColCompanyName, leads.ColLabels, leads.ColItems, leads.ColInfo,
			leads.ColHasTargetLabel, leads.ColScore,
		},
		Rows: []leads.Row{
			{
				leads.ColCompanyName:    "Crumbs, Ltd",
				leads.ColLabels:         "corn-starch; eco",
				leads.ColItems:          []any{map[string]any{"name": "cake"}},
				leads.ColInfo:           `We produce "bakery".`,
				leads.ColHasTargetLabel: true,
				leads.ColScore:          70,
			},
			{
				leads.ColCompanyName:    "Glow",
				leads.ColHasTargetLabel: false,
				leads.ColScore:          0,
			},
		},
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, scoredDataset()); err != nil {
		t.Fatalf("EncodeCSV error: %v", err)
	}
	want := strings.Join([]string{
		`company_name,labels,items,info,has_target_label,score`,
		`"Crumbs, Ltd",corn-starch; eco,"[{""name"":""cake""}]","We produce ""bakery"".",True,70`,
		`Glow,,,,False,0`,
		``,
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSVCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leads.csv")
	if err := WriteCSV(path, scoredDataset()); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if lines := strings.Count(string(b), "\n"); lines != 3 {
		t.Fatalf("expected 3 lines, got %d", lines)
	}
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.sqlite")
	ds := scoredDataset()
	if err := WriteSQLite(path, "", ds); err != nil {
		t.Fatalf("WriteSQLite error: %v", err)
	}
	// A second write replaces the table instead of appending.
	if err := WriteSQLite(path, "", ds); err != nil {
		t.Fatalf("second WriteSQLite error: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM buyer_leads`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
	var items sql.NullString
	var label, score int
	err = db.QueryRow(`SELECT items, has_target_label, score FROM buyer_leads WHERE company_name = ?`, "Crumbs, Ltd").
		Scan(&items, &label, &score)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if items.String != `[{"name":"cake"}]` || label != 1 || score != 70 {
		t.Fatalf("unexpected row: items=%q label=%d score=%d", items.String, label, score)
	}
	var info sql.NullString
	if err := db.QueryRow(`SELECT info FROM buyer_leads WHERE company_name = 'Glow'`).Scan(&info); err != nil {
		t.Fatalf("select glow: %v", err)
	}
	if info.Valid {
		t.Fatalf("missing info should be NULL, got %q", info.String)
	}
}

func TestCreateStatements(t *testing.T) {
	got := createStatements("leads", []string{"company_name", "score", "has_target_label", `odd"col`})
	want := []string{
		`DROP TABLE IF EXISTS "leads"`,
		`CREATE TABLE "leads" ("company_name" TEXT,"score" INTEGER,"has_target_label" INTEGER,"odd""col" TEXT)`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("statements mismatch (-want +got):\n%s", diff)
	}
	idx := indexStatements("leads", []string{"score"})
	if len(idx) != 1 || !strings.Contains(idx[0], `"idx_leads_score"`) {
		t.Fatalf("unexpected index statements %v", idx)
	}
}

func TestSQLValue(t *testing.T) {
	tests := []struct {
		col  string
		in   any
		want any
	}{
		{leads.ColHasTargetLabel, true, 1},
		{leads.ColIsTargetIndustry, false, 0},
		{leads.ColScore, 170, 170},
		{leads.ColScore, 20.0, int64(20)},
		{"rating", 4.5, "4.5"},
		{"verified", true, "True"},
		{"info", nil, nil},
		{"items", []any{"a"}, `["a"]`},
	}
	for _, tt := range tests {
		if got := sqlValue(tt.col, tt.in); got != tt.want {
			t.Fatalf("sqlValue(%q, %v) = %#v, want %#v", tt.col, tt.in, got, tt.want)
		}
	}
}

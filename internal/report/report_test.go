package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"leadscore/internal/leads"
	"leadscore/internal/source"
)

func TestBuild(t *testing.T) {
	in := Input{
		Load: source.Stats{SourceRows: 1234, InvalidRows: 2, RepairedRows: 1},
		Run:  leads.Report{InputRows: 1232, DedupedRows: 3, DroppedRows: 1229, LabelHits: 1, IndustryHits: 2},
		Scored: leads.Dataset{
			Columns: []string{leads.ColCompanyName, leads.ColInfo, leads.ColScore},
			Rows: []leads.Row{
				{leads.ColCompanyName: "Crumbs", leads.ColInfo: "We produce bakery.", leads.ColScore: 150},
				{leads.ColCompanyName: "Pawsome", leads.ColScore: 30},
				{leads.ColCompanyName: "Glow", leads.ColInfo: " ", leads.ColScore: 30},
			},
		},
	}
	got := Build(in)
	for _, want := range []string{
		"- Source rows read: 1,234",
		"- Dropped duplicate company_name rows: 1,229",
		"- `info`: 66.7% null",
		"- `company_name`: 0.0% null",
		"- `is_target_industry`: 2",
		"- min=30, median=30, mean=70, max=150",
		"- score 30: 2 rows",
		"1. Crumbs (score 150)",
		"3. Glow (score 30)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "score 150: 1 rows") > strings.Index(got, "score 30: 2 rows") {
		t.Fatalf("score buckets not in descending order:\n%s", got)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "profile.md")
	if err := Write(path, Input{}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(b), "# Buyer leads cleaning + scoring report") {
		t.Fatalf("unexpected report header: %q", string(b)[:40])
	}
}

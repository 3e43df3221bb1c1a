package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"leadscore/internal/leads"
	"leadscore/internal/sink"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	ds := leads.Dataset{
		Columns: []string{leads.ColCompanyName, leads.ColItems, leads.ColHasTargetLabel, leads.ColScore},
		Rows: []leads.Row{
			{leads.ColCompanyName: "Crumbs", leads.ColItems: []any{map[string]any{"name": "cake"}}, leads.ColHasTargetLabel: true, leads.ColScore: 150},
			{leads.ColCompanyName: "Crunch_Co", leads.ColHasTargetLabel: false, leads.ColScore: 30},
			{leads.ColCompanyName: "CrunchyCo", leads.ColHasTargetLabel: false, leads.ColScore: 30},
			{leads.ColCompanyName: "Glow", leads.ColHasTargetLabel: false, leads.ColScore: 0},
		},
	}
	path := filepath.Join(t.TempDir(), "leads.sqlite")
	if err := sink.WriteSQLite(path, "", ds); err != nil {
		t.Fatalf("WriteSQLite error: %v", err)
	}
	return path
}

func names(ls []Lead) []string {
	var out []string
	for _, l := range ls {
		out = append(out, l[leads.ColCompanyName].(string))
	}
	return out
}

func TestStoreQueries(t *testing.T) {
	s, err := Open(writeFixture(t), "")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	n, err := s.Count(ctx)
	if err != nil || n != 4 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	top, err := s.Top(ctx, 3, 0)
	if err != nil {
		t.Fatalf("Top error: %v", err)
	}
	if diff := cmp.Diff([]string{"Crumbs", "Crunch_Co", "CrunchyCo"}, names(top)); diff != "" {
		t.Fatalf("Top mismatch (-want +got):\n%s", diff)
	}
	next, err := s.Top(ctx, 3, 3)
	if err != nil {
		t.Fatalf("Top page 2 error: %v", err)
	}
	if diff := cmp.Diff([]string{"Glow"}, names(next)); diff != "" {
		t.Fatalf("Top page 2 mismatch (-want +got):\n%s", diff)
	}

	lead, err := s.ByName(ctx, "Crumbs")
	if err != nil {
		t.Fatalf("ByName error: %v", err)
	}
	want := Lead{
		leads.ColCompanyName:    "Crumbs",
		leads.ColItems:          []any{map[string]any{"name": "cake"}},
		leads.ColHasTargetLabel: true,
		leads.ColScore:          int64(150),
	}
	if diff := cmp.Diff(want, lead); diff != "" {
		t.Fatalf("ByName mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.ByName(ctx, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// "_" must be literal, not a LIKE wildcard.
	found, err := s.Search(ctx, "Crunch_", 10, 0)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if diff := cmp.Diff([]string{"Crunch_Co"}, names(found)); diff != "" {
		t.Fatalf("Search mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenRejectsMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "none.sqlite"), ""); err == nil {
		t.Fatalf("expected error for missing database")
	}
}

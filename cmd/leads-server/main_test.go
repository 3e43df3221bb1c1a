package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"leadscore/internal/leads"
	"leadscore/internal/sink"
	"leadscore/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ds := leads.Dataset{
		Columns: []string{leads.ColCompanyName, leads.ColIsTargetIndustry, leads.ColScore},
		Rows: []leads.Row{
			{leads.ColCompanyName: "Crumbs Ltd", leads.ColIsTargetIndustry: true, leads.ColScore: 120},
			{leads.ColCompanyName: "Pawsome", leads.ColIsTargetIndustry: true, leads.ColScore: 30},
			{leads.ColCompanyName: "Glow", leads.ColIsTargetIndustry: false, leads.ColScore: 0},
		},
	}
	path := filepath.Join(t.TempDir(), "leads.sqlite")
	if err := sink.WriteSQLite(path, "", ds); err != nil {
		t.Fatalf("WriteSQLite error: %v", err)
	}
	s, err := store.Open(path, "")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	srv := httptest.NewServer(newRouter(s, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, u string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", u, resp.StatusCode, wantStatus)
	}
	if v == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", u, err)
	}
}

func TestListLeads(t *testing.T) {
	srv := newTestServer(t)
	var p listPayload
	getJSON(t, srv.URL+"/api/leads?limit=2", http.StatusOK, &p)
	if p.Total != 3 || len(p.Leads) != 2 {
		t.Fatalf("unexpected payload %+v", p)
	}
	if p.Leads[0][leads.ColCompanyName] != "Crumbs Ltd" || p.Leads[1][leads.ColCompanyName] != "Pawsome" {
		t.Fatalf("wrong order: %+v", p.Leads)
	}
	getJSON(t, srv.URL+"/api/leads?limit=0", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/leads?offset=-1", http.StatusBadRequest, nil)
}

func TestGetLead(t *testing.T) {
	srv := newTestServer(t)
	var l map[string]any
	getJSON(t, srv.URL+"/api/leads/"+url.PathEscape("Crumbs Ltd"), http.StatusOK, &l)
	if l[leads.ColScore] != 120.0 || l[leads.ColIsTargetIndustry] != true {
		t.Fatalf("unexpected lead %v", l)
	}
	getJSON(t, srv.URL+"/api/leads/Nobody", http.StatusNotFound, nil)
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)
	var p listPayload
	getJSON(t, srv.URL+"/api/search?q=paw", http.StatusOK, &p)
	if len(p.Leads) != 1 || p.Leads[0][leads.ColCompanyName] != "Pawsome" {
		t.Fatalf("unexpected search result %+v", p)
	}
	getJSON(t, srv.URL+"/api/search?q=zz", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/search?q=zzz", http.StatusOK, &p)
	if p.Leads == nil || len(p.Leads) != 0 {
		t.Fatalf("expected empty list, got %+v", p.Leads)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	getJSON(t, srv.URL+"/healthz", http.StatusOK, nil)
}

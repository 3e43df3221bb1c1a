package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"leadscore/internal/config"
	"leadscore/internal/store"
)

const (
	defaultAddr     = "127.0.0.1:18744"
	defaultPageSize = 25
	maxPageSize     = 500
	searchMinChars  = 3
)

func main() {
	config.LoadDotEnv()
	var (
		dbPath   string
		table    string
		addr     string
		logLevel string
	)
	cmd := &cobra.Command{
		Use:          "leads-server",
		Short:        "Serve scored buyer leads from the SQLite output as JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			cfg.ApplyEnv()
			if dbPath == "" {
				dbPath = cfg.SQLitePath
			}
			if table == "" {
				table = cfg.Table
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger := cfg.Logger()

			s, err := store.Open(dbPath, table)
			if err != nil {
				return err
			}
			defer s.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newRouter(s, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			logger.Info("listening", "addr", addr, "db", dbPath, "table", table)
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&dbPath, "path", "", "Path to the scored leads SQLite database")
	cmd.Flags().StringVar(&table, "table", "", "Table name")
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "HTTP listen address")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRouter(s *store.Store, logger *slog.Logger) *mux.Router {
	h := &handlers{store: s, log: logger}
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/api/leads", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/leads/{company}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/search", h.search).Methods(http.MethodGet)
	return r
}

type handlers struct {
	store *store.Store
	log   *slog.Logger
}

type listPayload struct {
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Leads  []store.Lead `json:"leads"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit or offset")
		return
	}
	total, err := h.store.Count(r.Context())
	if err != nil {
		h.internal(w, "count leads", err)
		return
	}
	ls, err := h.store.Top(r.Context(), limit, offset)
	if err != nil {
		h.internal(w, "list leads", err)
		return
	}
	writeJSON(w, http.StatusOK, listPayload{Total: total, Limit: limit, Offset: offset, Leads: nonNil(ls)})
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["company"]
	l, err := h.store.ByName(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	if err != nil {
		h.internal(w, "get lead", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(q)) < searchMinChars {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("query must be at least %d characters", searchMinChars))
		return
	}
	limit, offset, ok := pageParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit or offset")
		return
	}
	ls, err := h.store.Search(r.Context(), q, limit, offset)
	if err != nil {
		h.internal(w, "search leads", err)
		return
	}
	writeJSON(w, http.StatusOK, listPayload{Total: len(ls), Limit: limit, Offset: offset, Leads: nonNil(ls)})
}

func (h *handlers) internal(w http.ResponseWriter, what string, err error) {
	h.log.Error(what, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func pageParams(r *http.Request) (limit, offset int, ok bool) {
	limit, ok = intParam(r, "limit", defaultPageSize)
	if !ok || limit < 1 || limit > maxPageSize {
		return 0, 0, false
	}
	offset, ok = intParam(r, "offset", 0)
	if !ok || offset < 0 {
		return 0, 0, false
	}
	return limit, offset, true
}

func intParam(r *http.Request, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func nonNil(ls []store.Lead) []store.Lead {
	if ls == nil {
		return []store.Lead{}
	}
	return ls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

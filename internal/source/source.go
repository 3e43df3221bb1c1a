// Package source reads scraped lead records from JSON or JSON Lines files.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"leadscore/internal/leads"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Stats counts what the loader saw.
type Stats struct {
	SourceRows   int
	RepairedRows int
	InvalidRows  int
}

// Options control loading.
type Options struct {
	Limit  int // 0 = all rows
	Logger *slog.Logger
}

// LoadFile reads path. A file whose first non-blank byte is '[' is treated as a
// JSON array of records, anything else as JSON Lines.
func LoadFile(path string, opts Options) (leads.Dataset, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return leads.Dataset{}, Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Load(f, opts)
}

func Load(r io.Reader, opts Options) (leads.Dataset, Stats, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	br := bufio.NewReaderSize(r, 1024*1024)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return leads.NewDataset(nil), Stats{}, nil
	}
	if err != nil {
		return leads.Dataset{}, Stats{}, fmt.Errorf("read input: %w", err)
	}
	if first == '[' {
		return loadArray(br, opts)
	}
	return loadLines(br, opts)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		if bom, _ := br.Peek(3); bytes.Equal(bom, utf8BOM) {
			_, _ = br.Discard(3)
			continue
		}
		p, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch p[0] {
		case ' ', '\t', '\n', '\r':
			_, _ = br.Discard(1)
		default:
			return p[0], nil
		}
	}
}

func loadArray(r io.Reader, opts Options) (leads.Dataset, Stats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return leads.Dataset{}, Stats{}, fmt.Errorf("read input: %w", err)
	}
	var st Stats
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return leads.Dataset{}, st, fmt.Errorf("decode json array: %w (repair: %v)", err, repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return leads.Dataset{}, st, fmt.Errorf("decode repaired json array: %w", err)
		}
		opts.Logger.Warn("input document repaired", "bytes", len(data))
		st.RepairedRows = len(raw)
	}

	var rows []leads.Row
	for i, v := range raw {
		st.SourceRows++
		m, ok := v.(map[string]any)
		if !ok {
			st.InvalidRows++
			opts.Logger.Debug("skipping non-object record", "index", i)
			continue
		}
		rows = append(rows, leads.Row(m))
		if opts.Limit > 0 && len(rows) >= opts.Limit {
			break
		}
	}
	return leads.NewDataset(rows), st, nil
}

func loadLines(r io.Reader, opts Options) (leads.Dataset, Stats, error) {
	var st Stats
	var rows []leads.Row

	sc := bufio.NewScanner(r)
	buf := make([]byte, 0, 1024*1024)
	sc.Buffer(buf, 20*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		st.SourceRows++
		row, repaired, err := decodeRecord(text)
		if err != nil {
			st.InvalidRows++
			opts.Logger.Warn("skipping invalid record", "line", line, "error", err)
			continue
		}
		if repaired {
			st.RepairedRows++
			opts.Logger.Debug("record repaired", "line", line)
		}
		rows = append(rows, row)
		if opts.Limit > 0 && len(rows) >= opts.Limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return leads.Dataset{}, st, fmt.Errorf("scan input: %w", err)
	}
	return leads.NewDataset(rows), st, nil
}

func decodeRecord(text string) (leads.Row, bool, error) {
	var m map[string]any
	err := json.Unmarshal([]byte(text), &m)
	if err == nil && m != nil {
		return leads.Row(m), false, nil
	}
	repaired, repairErr := jsonrepair.JSONRepair(text)
	if repairErr != nil {
		return nil, false, fmt.Errorf("decode: %v, repair: %w", err, repairErr)
	}
	m = nil
	if err := json.Unmarshal([]byte(repaired), &m); err != nil {
		return nil, false, fmt.Errorf("decode repaired record: %w", err)
	}
	if m == nil {
		return nil, false, fmt.Errorf("record is not an object")
	}
	return leads.Row(m), true, nil
}

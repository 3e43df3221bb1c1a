package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"leadscore/internal/leads"
)

// WriteCSV writes ds to path with a header row, in row order.
func WriteCSV(path string, ds leads.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create csv dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := EncodeCSV(w, ds); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// EncodeCSV writes ds as comma separated text with "\n" line endings.
func EncodeCSV(w io.Writer, ds leads.Dataset) error {
	if err := writeCSVRecord(w, ds.Columns); err != nil {
		return err
	}
	rec := make([]string, len(ds.Columns))
	for _, r := range ds.Rows {
		for i, c := range ds.Columns {
			rec[i] = csvString(r[c])
		}
		if err := writeCSVRecord(w, rec); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRecord(w io.Writer, rec []string) error {
	for i, field := range rec {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if needsCSVQuote(field) {
			field = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		}
		if _, err := io.WriteString(w, field); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func needsCSVQuote(s string) bool {
	return strings.ContainsAny(s, ",\"\n\r")
}

// Package sink writes scored lead datasets to CSV files and SQL tables.
package sink

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"leadscore/internal/leads"
)

// DefaultTable is the SQL table scored leads are written to.
const DefaultTable = "buyer_leads"

var integerColumns = map[string]bool{
	leads.ColTargetIngredients:   true,
	leads.ColTargetProducts:      true,
	leads.ColProductsUsingTarget: true,
	leads.ColScore:               true,
}

var booleanColumns = map[string]bool{
	leads.ColHasTargetLabel:   true,
	leads.ColIsTargetIndustry: true,
}

// csvString renders a cell the way pandas' to_csv would for the same value,
// except nested lists and objects, which are written as JSON.
func csvString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case []any, map[string]any, []string, []map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// sqlValue converts a cell to a driver value. Booleans become 0/1 in integer
// columns; nested values become JSON text.
func sqlValue(col string, v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if booleanColumns[col] {
			if t {
				return 1
			}
			return 0
		}
		return csvString(t)
	case int, int64:
		if integerColumns[col] {
			return t
		}
		return csvString(t)
	case float64:
		if math.IsNaN(t) {
			return nil
		}
		if integerColumns[col] {
			return int64(t)
		}
		return csvString(t)
	case string:
		return t
	default:
		return csvString(t)
	}
}

func columnType(col string) string {
	if integerColumns[col] || booleanColumns[col] {
		return "INTEGER"
	}
	return "TEXT"
}

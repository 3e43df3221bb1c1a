// Package leads cleans and scores prospective-buyer company records.
package leads

import "sort"

type Row map[string]any

// Dataset is an in-memory table. Columns holds the column order as first seen
// by the loader; rows may lack any of them.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// Canonical and derived column names.
const (
	ColCompanyName = "company_name"
	ColKeywords    = "keywords"
	ColLabels      = "labels"
	ColItems       = "items"
	ColInfo        = "info"

	ColHasTargetLabel      = "has_target_label"
	ColTargetIngredients   = "n_target_ingredients"
	ColTargetProducts      = "n_target_products"
	ColIsTargetIndustry    = "is_target_industry"
	ColProductsUsingTarget = "n_products_using_target"
	ColScore               = "score"
)

// DerivedColumns lists the signal columns followed by the score column, in output order.
var DerivedColumns = []string{
	ColHasTargetLabel,
	ColTargetIngredients,
	ColTargetProducts,
	ColIsTargetIndustry,
	ColProductsUsingTarget,
	ColScore,
}

// NewDataset builds a dataset whose column order follows first appearance in rows.
// Map iteration order is random, so keys first seen in the same row are sorted.
func NewDataset(rows []Row) Dataset {
	ds := Dataset{Rows: rows}
	for _, r := range rows {
		ds.Columns = appendNewColumns(ds.Columns, r)
	}
	return ds
}

// Clone copies the row maps and column slice. Nested values are shared.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Row, len(d.Rows)),
	}
	for i, r := range d.Rows {
		c := make(Row, len(r))
		for k, v := range r {
			c[k] = v
		}
		out.Rows[i] = c
	}
	return out
}

// HasColumn reports whether name is in the column list.
func (d Dataset) HasColumn(name string) bool {
	return indexOf(d.Columns, name) >= 0
}

// Len returns the row count.
func (d Dataset) Len() int { return len(d.Rows) }

func (d *Dataset) addColumn(name string) {
	if !d.HasColumn(name) {
		d.Columns = append(d.Columns, name)
	}
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

func appendNewColumns(cols []string, r Row) []string {
	var fresh []string
	for k := range r {
		if indexOf(cols, k) < 0 {
			fresh = append(fresh, k)
		}
	}
	sort.Strings(fresh)
	return append(cols, fresh...)
}

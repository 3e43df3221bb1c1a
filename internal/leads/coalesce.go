package leads

// ColumnPair names two columns holding the same field. Primary survives.
type ColumnPair struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Coalesce merges each secondary column into its primary, pair by pair in the
// given order. A row keeps its primary value when present and otherwise takes
// the secondary value; the secondary column is then dropped. The input dataset
// is not modified.
func Coalesce(ds Dataset, pairs []ColumnPair) Dataset {
	out := ds.Clone()
	for _, p := range pairs {
		if p.Primary == p.Secondary {
			continue
		}
		secIdx := indexOf(out.Columns, p.Secondary)
		if secIdx < 0 {
			continue
		}
		for _, r := range out.Rows {
			sec, ok := r[p.Secondary]
			if !ok {
				continue
			}
			delete(r, p.Secondary)
			if IsMissing(r[p.Primary]) && !IsMissing(sec) {
				r[p.Primary] = sec
			}
		}
		if out.HasColumn(p.Primary) {
			out.Columns = append(out.Columns[:secIdx], out.Columns[secIdx+1:]...)
		} else {
			out.Columns[secIdx] = p.Primary
		}
	}
	return out
}

package leads

import "sort"

// RemoveDuplicates keeps one row per company_name. Rows are sorted by
// (company_name, keywords) with missing keywords last, and the first row of
// each name wins, so a row with keywords is preferred over one without.
// The output stays in that sorted order.
func RemoveDuplicates(ds Dataset) Dataset {
	out := ds.Clone()
	rs := out.Rows
	sort.SliceStable(rs, func(i, j int) bool {
		return rowLess(rs[i], rs[j])
	})
	seen := make(map[string]struct{}, len(rs))
	kept := make([]Row, 0, len(rs))
	for _, r := range rs {
		name := asString(r[ColCompanyName])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		kept = append(kept, r)
	}
	out.Rows = kept
	return out
}

func rowLess(a, b Row) bool {
	an, bn := asString(a[ColCompanyName]), asString(b[ColCompanyName])
	if an != bn {
		return an < bn
	}
	ak, bk := a[ColKeywords], b[ColKeywords]
	am, bm := IsMissing(ak), IsMissing(bk)
	if am != bm {
		return bm // missing last
	}
	if am {
		return false
	}
	return asString(ak) < asString(bk)
}

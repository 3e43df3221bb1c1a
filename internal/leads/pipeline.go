package leads

import (
	"log/slog"
	"sort"
)

// DefaultPairs merges the synonym columns seen across the scraped sources.
var DefaultPairs = []ColumnPair{
	{ColCompanyName, "name"},
	{ColCompanyName, "company"},
	{ColInfo, "description"},
	{ColInfo, "desc"},
	{ColLabels, "tags"},
	{"products", "product_list"},
	{"url", "website"},
	{"url", "site"},
}

// DefaultTargets scores leads as potential corn starch buyers.
func DefaultTargets() Targets {
	return Targets{
		Label:       "corn-starch",
		Ingredients: []string{"emulsifier", "flour", "gelatin", "mica", "talc", "zinc oxide"},
		Products:    []string{"biscuits", "cake", "chips", "face powder", "pudding"},
		Industries:  []string{"snacks", "natural snacks", "bakery", "sauces", "cosmetics", "pet food"},
		Uses:        []string{"binder", "thickener", "maize powder", "starch"},
	}
}

type Pipeline struct {
	Pairs   []ColumnPair
	Targets Targets
	Logger  *slog.Logger
}

// Report summarises one pipeline run.
type Report struct {
	InputRows      int
	DedupedRows    int
	DroppedRows    int
	LabelHits      int
	IngredientHits int
	ProductHits    int
	IndustryHits   int
	UseHits        int
}

// Run reconciles, deduplicates and scores ds, returning the rows sorted by
// score descending. Ties keep the deduplicated (company name) order.
func (p Pipeline) Run(ds Dataset) (Dataset, Report) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	rep := Report{InputRows: ds.Len()}

	out := Coalesce(ds, p.Pairs)
	log.Info("columns reconciled", "pairs", len(p.Pairs), "columns", len(out.Columns))

	out = RemoveDuplicates(out)
	rep.DedupedRows = out.Len()
	rep.DroppedRows = rep.InputRows - rep.DedupedRows
	log.Info("duplicates removed", "rows", rep.DedupedRows, "dropped", rep.DroppedRows)

	ex := NewExtractor(p.Targets)
	for _, r := range out.Rows {
		s := ex.Extract(r)
		s.Annotate(r)
		rep.add(s)
	}
	for _, c := range DerivedColumns {
		out.addColumn(c)
	}
	SortByScore(out.Rows)
	log.Info("leads scored",
		"label_hits", rep.LabelHits,
		"industry_hits", rep.IndustryHits,
		"ingredient_hits", rep.IngredientHits,
		"product_hits", rep.ProductHits,
		"use_hits", rep.UseHits,
	)
	return out, rep
}

func (r *Report) add(s Signals) {
	if s.HasTargetLabel {
		r.LabelHits++
	}
	if s.IsTargetIndustry {
		r.IndustryHits++
	}
	if s.TargetIngredients > 0 {
		r.IngredientHits++
	}
	if s.TargetProducts > 0 {
		r.ProductHits++
	}
	if s.ProductsUsingTarget > 0 {
		r.UseHits++
	}
}

// SortByScore orders rows by the score column, highest first. The sort is stable.
func SortByScore(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return ScoreOf(rows[i]) > ScoreOf(rows[j])
	})
}

// ScoreOf returns the score column of r, or 0 if r has not been scored.
func ScoreOf(r Row) int {
	switch t := r[ColScore].(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	}
	return 0
}

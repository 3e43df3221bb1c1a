package leads

const (
	weightLabel       = 50
	weightIndustry    = 20
	weightIngredients = 10
	weightProducts    = 10
	weightUses        = 10
)

// Signals holds the five derived relevance indicators of one lead.
type Signals struct {
	HasTargetLabel      bool
	TargetIngredients   int
	TargetProducts      int
	IsTargetIndustry    bool
	ProductsUsingTarget int
}

// Score is the weighted sum of the signals.
func Score(s Signals) int {
	return weightLabel*b2i(s.HasTargetLabel) +
		weightIndustry*b2i(s.IsTargetIndustry) +
		weightIngredients*s.TargetIngredients +
		weightProducts*s.TargetProducts +
		weightUses*s.ProductsUsingTarget
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Extractor derives Signals from rows. Build one per vocabulary with
// NewExtractor; the industry and use patterns are compiled once.
type Extractor struct {
	targets  Targets
	industry *PhraseMatcher
	uses     *PhraseMatcher
}

func NewExtractor(t Targets) *Extractor {
	return &Extractor{
		targets:  t,
		industry: NewPhraseMatcher(industryPhrase, t.Industries, true),
		uses:     NewPhraseMatcher(usePhrase, t.Uses, false),
	}
}

// Extract reads labels, items and info from r. It never fails; malformed fields
// count as no evidence.
func (e *Extractor) Extract(r Row) Signals {
	items := CatalogOf(r[ColItems])
	info := TextOf(r[ColInfo])
	return Signals{
		HasTargetLabel:      HasLabel(TextOf(r[ColLabels]), e.targets.Label),
		TargetIngredients:   CountIngredients(items, e.targets.Ingredients),
		TargetProducts:      CountProducts(items, e.targets.Products),
		IsTargetIndustry:    e.industry.Matches(info),
		ProductsUsingTarget: e.uses.Count(info),
	}
}

// Annotate writes the signal columns and the score into r.
func (s Signals) Annotate(r Row) {
	r[ColHasTargetLabel] = s.HasTargetLabel
	r[ColTargetIngredients] = s.TargetIngredients
	r[ColTargetProducts] = s.TargetProducts
	r[ColIsTargetIndustry] = s.IsTargetIndustry
	r[ColProductsUsingTarget] = s.ProductsUsingTarget
	r[ColScore] = Score(s)
}

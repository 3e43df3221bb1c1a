package leads

import (
	"regexp"
	"strings"
)

const (
	industryPhrase = "We produce "
	usePhrase      = "Our products use "
)

var reLabelSep = regexp.MustCompile(`[;,]`)

// Targets is the vocabulary a lead is scored against.
type Targets struct {
	Label       string   `json:"label"`
	Ingredients []string `json:"ingredients"`
	Products    []string `json:"products"`
	Industries  []string `json:"industries"`
	Uses        []string `json:"uses"`
}

// HasLabel reports whether target is one of the ";" or "," separated labels.
func HasLabel(labels Text, target string) bool {
	if !labels.Valid {
		return false
	}
	for _, l := range reLabelSep.Split(labels.Value, -1) {
		if strings.TrimSpace(l) == target {
			return true
		}
	}
	return false
}

// CountIngredients counts ingredients, over all products, that are in targets.
func CountIngredients(items Catalog, targets []string) int {
	if !items.Valid {
		return 0
	}
	set := stringSet(targets)
	n := 0
	for _, p := range items.Entries {
		if !p.HasIngredients {
			continue
		}
		for _, ingr := range p.Ingredients {
			if _, ok := set[ingr]; ok {
				n++
			}
		}
	}
	return n
}

// CountProducts counts products whose name is in targets.
func CountProducts(items Catalog, targets []string) int {
	if !items.Valid {
		return 0
	}
	set := stringSet(targets)
	n := 0
	for _, p := range items.Entries {
		if !p.HasName {
			continue
		}
		if _, ok := set[p.Name]; ok {
			n++
		}
	}
	return n
}

// IsTargetIndustry reports whether info starts with "We produce " and one of industries.
func IsTargetIndustry(info Text, industries []string) bool {
	return NewPhraseMatcher(industryPhrase, industries, true).Matches(info)
}

// CountUses counts "Our products use " followed by one of uses, anywhere in info.
func CountUses(info Text, uses []string) int {
	return NewPhraseMatcher(usePhrase, uses, false).Count(info)
}

// PhraseMatcher finds a fixed phrase immediately followed by one of a set of
// literal terms. Terms are escaped, never interpreted as pattern syntax.
type PhraseMatcher struct {
	re *regexp.Regexp
}

// NewPhraseMatcher compiles phrase+(term|term|...). With anchored set the
// phrase must start the text. An empty term list matches nothing.
func NewPhraseMatcher(phrase string, terms []string, anchored bool) *PhraseMatcher {
	if len(terms) == 0 {
		return &PhraseMatcher{}
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	expr := regexp.QuoteMeta(phrase) + "(" + strings.Join(quoted, "|") + ")"
	if anchored {
		expr = `\A` + expr
	}
	return &PhraseMatcher{re: regexp.MustCompile(expr)}
}

// Matches reports whether text contains a match.
func (m *PhraseMatcher) Matches(text Text) bool {
	if m.re == nil || !text.Valid {
		return false
	}
	return m.re.MatchString(text.Value)
}

// Count returns the number of leftmost non-overlapping matches.
func (m *PhraseMatcher) Count(text Text) int {
	if m.re == nil || !text.Valid {
		return 0
	}
	return len(m.re.FindAllStringIndex(text.Value, -1))
}

func stringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

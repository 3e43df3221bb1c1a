package leads

import (
	"fmt"
	"math"
	"strings"
)

// IsMissing reports whether v is a missing-value marker: nil, a blank string or NaN.
func IsMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	}
	return false
}

// Text is an optional free-text field.
type Text struct {
	Value string
	Valid bool
}

// TextOf views a raw value as text. Only strings are valid text; the value is
// kept verbatim so anchored patterns see the original first character.
func TextOf(v any) Text {
	s, ok := v.(string)
	if !ok {
		return Text{}
	}
	return Text{Value: s, Valid: true}
}

// Product is one entry of a company's items list.
type Product struct {
	Name           string
	HasName        bool
	Ingredients    []string
	HasIngredients bool
}

// Catalog is an optional list of products.
type Catalog struct {
	Entries []Product
	Valid   bool
}

// CatalogOf views a raw value as a product list. Anything but a JSON array is an
// invalid catalog. Entries that are not objects are dropped, as are non-string
// names and ingredients.
func CatalogOf(v any) Catalog {
	items, ok := asSlice(v)
	if !ok {
		return Catalog{}
	}
	c := Catalog{Valid: true, Entries: make([]Product, 0, len(items))}
	for _, item := range items {
		m := asMap(item)
		if m == nil {
			continue
		}
		var p Product
		if name, ok := m["name"].(string); ok {
			p.Name, p.HasName = name, true
		}
		if raw, ok := m["ingredients"]; ok {
			if ingr, ok := asSlice(raw); ok {
				p.HasIngredients = true
				for _, x := range ingr {
					if s, ok := x.(string); ok {
						p.Ingredients = append(p.Ingredients, s)
					}
				}
			}
		}
		c.Entries = append(c.Entries, p)
	}
	return c
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case Row:
		return t
	}
	return nil
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

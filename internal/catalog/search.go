package catalog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Sort orders accepted by Search
const (
	SortPopular   = "popular"
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

var leadingNumber = regexp.MustCompile(`\d+`)

// Selection is the active category filter. The zero value selects
// All Products.
type Selection struct {
	active []string
}

// NewSelection builds a selection by toggling each category in order
func NewSelection(categories ...string) Selection {
	var s Selection
	for _, c := range categories {
		s = s.Toggle(c)
	}
	return s
}

// Active returns the selected categories
func (s Selection) Active() []string {
	if len(s.active) == 0 {
		return []string{AllProducts}
	}
	return append([]string(nil), s.active...)
}

// Toggle flips one category. Choosing All Products clears every concrete
// choice, choosing a concrete category drops All Products, and removing the
// last concrete category falls back to All Products.
func (s Selection) Toggle(category string) Selection {
	if category == AllProducts {
		return Selection{}
	}

	next := make([]string, 0, len(s.active)+1)
	found := false
	for _, c := range s.active {
		if c == category {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		next = append(next, category)
	}
	return Selection{active: next}
}

// Matches reports whether a category passes the filter
func (s Selection) Matches(category string) bool {
	if len(s.active) == 0 {
		return true
	}
	for _, c := range s.active {
		if c == category {
			return true
		}
	}
	return false
}

// Query describes a product listing request
type Query struct {
	Selection Selection
	Text      string
	Sort      string
}

// Search filters and sorts the catalog
func Search(q Query) []Product {
	needle := strings.ToLower(strings.TrimSpace(q.Text))

	result := make([]Product, 0, len(products))
	for _, p := range products {
		if !q.Selection.Matches(p.Category) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.ShortDescription), needle) {
			continue
		}
		result = append(result, p.clone())
	}

	switch q.Sort {
	case SortPriceLow:
		sort.SliceStable(result, func(i, j int) bool {
			return PriceValue(result[i].Price) < PriceValue(result[j].Price)
		})
	case SortPriceHigh:
		sort.SliceStable(result, func(i, j int) bool {
			return PriceValue(result[i].Price) > PriceValue(result[j].Price)
		})
	}

	return result
}

// PriceValue extracts the first integer from a display price, 0 if none
func PriceValue(price string) int {
	m := leadingNumber.FindString(price)
	if m == "" {
		return 0
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return v
}

package recipe

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey orders a recipe list.
type SortKey string

const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortNameAsc  SortKey = "name_asc"
	SortNameDesc SortKey = "name_desc"
	SortTimeAsc  SortKey = "time_asc"
	SortTimeDesc SortKey = "time_desc"
)

// AllCuisines disables the cuisine filter.
const AllCuisines = "all"

// ParseSortKey maps s to a known key, falling back to SortNewest.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortNewest, SortOldest, SortNameAsc, SortNameDesc, SortTimeAsc, SortTimeDesc:
		return k
	default:
		return SortNewest
	}
}

// Query selects and orders a user's recipes.
type Query struct {
	Search        string
	Cuisine       string
	FavoritesOnly bool
	Sort          SortKey
}

// Filter applies search, cuisine, favorites and sort, in that order. The
// input slice is left untouched.
func Filter(recipes []Recipe, q Query) []Recipe {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		if q.Cuisine != "" && q.Cuisine != AllCuisines && r.CuisineType != q.Cuisine {
			continue
		}
		if q.FavoritesOnly && !r.IsFavorite {
			continue
		}
		out = append(out, r)
	}

	Sort(out, ParseSortKey(string(q.Sort)))
	return out
}

// Sort orders recipes in place. Ties keep their relative order.
func Sort(recipes []Recipe, key SortKey) {
	// collate.Collator is not safe for concurrent use.
	col := collate.New(language.Und)

	var cmpFn func(a, b Recipe) int
	switch key {
	case SortOldest:
		cmpFn = func(a, b Recipe) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortNameAsc:
		cmpFn = func(a, b Recipe) int { return col.CompareString(a.Name, b.Name) }
	case SortNameDesc:
		cmpFn = func(a, b Recipe) int { return col.CompareString(b.Name, a.Name) }
	case SortTimeAsc:
		cmpFn = func(a, b Recipe) int { return cmp.Compare(a.TotalTime(), b.TotalTime()) }
	case SortTimeDesc:
		cmpFn = func(a, b Recipe) int { return cmp.Compare(b.TotalTime(), a.TotalTime()) }
	default:
		cmpFn = func(a, b Recipe) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
	slices.SortStableFunc(recipes, cmpFn)
}

// Cuisines returns the distinct non-empty cuisine types, sorted.
func Cuisines(recipes []Recipe) []string {
	cuisines := []string{}
	for _, r := range recipes {
		if r.CuisineType != "" && !slices.Contains(cuisines, r.CuisineType) {
			cuisines = append(cuisines, r.CuisineType)
		}
	}
	slices.Sort(cuisines)
	return cuisines
}

package collection

import (
	"strings"

	"ratemyrecipe/internal/model"
)

// FilterState is the predicate applied to the recipe list.
type FilterState struct {
	SearchText    string
	Category      model.Category
	FavoritesOnly bool
}

// DefaultFilter matches every recipe.
func DefaultFilter() FilterState {
	return FilterState{Category: model.CategoryAll}
}

// matcher is a FilterState prepared for repeated evaluation.
type matcher struct {
	needle        string
	category      model.Category
	favoritesOnly bool
	favorites     map[int64]struct{}
}

func newMatcher(f FilterState, favorites map[int64]struct{}) matcher {
	return matcher{
		needle:        strings.ToLower(f.SearchText),
		category:      f.Category,
		favoritesOnly: f.FavoritesOnly,
		favorites:     favorites,
	}
}

func (m matcher) match(r model.Recipe) bool {
	if m.needle != "" &&
		!strings.Contains(strings.ToLower(r.Title), m.needle) &&
		!strings.Contains(strings.ToLower(r.Description), m.needle) {
		return false
	}
	if m.category != model.CategoryAll && m.category != r.Category {
		return false
	}
	if m.favoritesOnly {
		if _, ok := m.favorites[r.ID]; !ok {
			return false
		}
	}
	return true
}

// normalizeCategory accepts slugs and anything ParseCategory understands
// ("Dessert", "Main", "Suppe"). Everything else maps to "all".
func normalizeCategory(c model.Category) model.Category {
	if c.Valid() {
		return c
	}
	parsed, err := model.ParseCategory(string(c))
	if err != nil {
		return model.CategoryAll
	}
	return parsed
}

package model

import (
	"fmt"
	"strings"
)

// Category is a recipe category slug.
type Category string

const (
	CategoryAll        Category = "all"
	CategoryMainCourse Category = "main-course"
	CategoryStarter    Category = "starter"
	CategoryBreakfast  Category = "breakfast"
	CategoryDessert    Category = "dessert"
	CategoryVegetarian Category = "vegetarian"
	CategoryVegan      Category = "vegan"
	CategoryFish       Category = "fish"
	CategorySalad      Category = "salad"
	CategorySoup       Category = "soup"
)

var categories = []Category{
	CategoryMainCourse,
	CategoryStarter,
	CategoryBreakfast,
	CategoryDessert,
	CategoryVegetarian,
	CategoryVegan,
	CategoryFish,
	CategorySalad,
	CategorySoup,
}

var categoryLabels = map[Category]string{
	CategoryAll:        "All",
	CategoryMainCourse: "Main Course",
	CategoryStarter:    "Starter",
	CategoryBreakfast:  "Breakfast",
	CategoryDessert:    "Dessert",
	CategoryVegetarian: "Vegetarian",
	CategoryVegan:      "Vegan",
	CategoryFish:       "Fish",
	CategorySalad:      "Salad",
	CategorySoup:       "Soup",
}

// Aliases are matched after lowercasing and trimming. The German labels are
// what the backend stores.
var categoryAliases = map[string]Category{
	"all":          CategoryAll,
	"alle":         CategoryAll,
	"main":         CategoryMainCourse,
	"main course":  CategoryMainCourse,
	"main-course":  CategoryMainCourse,
	"maincourse":   CategoryMainCourse,
	"hauptgericht": CategoryMainCourse,
	"starter":      CategoryStarter,
	"appetizer":    CategoryStarter,
	"vorspeise":    CategoryStarter,
	"breakfast":    CategoryBreakfast,
	"frühstück":    CategoryBreakfast,
	"fruehstueck":  CategoryBreakfast,
	"dessert":      CategoryDessert,
	"nachtisch":    CategoryDessert,
	"vegetarian":   CategoryVegetarian,
	"vegetarisch":  CategoryVegetarian,
	"vegan":        CategoryVegan,
	"fish":         CategoryFish,
	"fisch":        CategoryFish,
	"salad":        CategorySalad,
	"salat":        CategorySalad,
	"soup":         CategorySoup,
	"suppe":        CategorySoup,
}

// Categories returns the concrete categories in display order, without the
// "all" sentinel.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory resolves a slug, display name or alias to a Category.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Label returns the display name.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is a concrete category or the "all" sentinel.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Next returns the category after c in the cycle all → main-course → … → soup → all.
func (c Category) Next() Category {
	return c.step(1)
}

// Prev returns the category before c in the cycle.
func (c Category) Prev() Category {
	return c.step(-1)
}

func (c Category) step(delta int) Category {
	cycle := append([]Category{CategoryAll}, categories...)
	idx := 0
	for i, cat := range cycle {
		if cat == c {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(cycle)) % len(cycle)
	return cycle[idx]
}

// Difficulty is a recipe difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultDifficulty applies when a record carries none.
const DefaultDifficulty = DifficultyMedium

// ParseDifficulty resolves a difficulty name. Empty input yields DefaultDifficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultDifficulty, nil
	case "easy", "einfach", "leicht":
		return DifficultyEasy, nil
	case "medium", "mittel":
		return DifficultyMedium, nil
	case "hard", "schwer":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Label returns the display name.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	}
	return string(d)
}

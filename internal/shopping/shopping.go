package shopping

import (
	"slices"
	"strings"

	"recipe-planner/internal/recipe"
)

// Line is one ingredient of a recipe planned in the week.
type Line struct {
	RecipeName string
	Ingredient string
	Quantity   string
	IsOptional bool
}

// Item is an ingredient to buy, merged across the week's recipes.
type Item struct {
	Name       string   `json:"name"`
	Quantities []string `json:"quantities"`
	Recipes    []string `json:"recipes"`
	IsOptional bool     `json:"is_optional"`
}

// List is the shopping list for one week.
type List struct {
	WeekStart string   `json:"week_start"`
	Items     []Item   `json:"items"`
	InPantry  []string `json:"in_pantry"`
}

// Build merges lines by ingredient name. Ingredients found in the pantry are
// listed in InPantry instead of Items. An item is optional only when every
// recipe using it marks it optional.
func Build(weekStart string, lines []Line, pantry []string) List {
	have := make(map[string]bool, len(pantry))
	for _, p := range pantry {
		have[recipe.NormalizeIngredientName(p)] = true
	}

	list := List{WeekStart: weekStart, Items: []Item{}, InPantry: []string{}}
	index := map[string]int{}
	inPantry := map[string]bool{}
	for _, l := range lines {
		key := recipe.NormalizeIngredientName(l.Ingredient)
		if key == "" {
			continue
		}
		if have[key] {
			if !inPantry[key] {
				inPantry[key] = true
				list.InPantry = append(list.InPantry, l.Ingredient)
			}
			continue
		}

		i, ok := index[key]
		if !ok {
			i = len(list.Items)
			index[key] = i
			list.Items = append(list.Items, Item{Name: l.Ingredient, Quantities: []string{}, Recipes: []string{}, IsOptional: true})
		}
		it := &list.Items[i]
		if q := strings.TrimSpace(l.Quantity); q != "" {
			it.Quantities = append(it.Quantities, q)
		}
		if !slices.Contains(it.Recipes, l.RecipeName) {
			it.Recipes = append(it.Recipes, l.RecipeName)
		}
		it.IsOptional = it.IsOptional && l.IsOptional
	}

	slices.SortFunc(list.Items, func(a, b Item) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	slices.SortFunc(list.InPantry, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return list
}

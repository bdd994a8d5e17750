package nutrition

import (
	"fmt"
	"strconv"
	"strings"
)

// Summarize describes a line item as
// "<servings> x (<size description>) <name>[, <subtype>] (<oz> oz/<g> g)".
// Exactly one of food and recipe is expected; food wins if both are given.
// Recipe lines use "1 serving" as the size and never show a subtype.
func Summarize(food *Food, recipe *Recipe, servings float64) (string, error) {
	var (
		size, name string
		oz, g      float64
	)

	switch {
	case food != nil:
		size = food.SizeDescription
		name = food.DisplayName()
		oz = food.SizeOz * servings
		g = food.SizeG * servings
	case recipe != nil:
		size = "1 serving"
		name = recipe.Name
		if recipe.Servings > 0 {
			oz = recipe.SizeOz / recipe.Servings * servings
			g = recipe.SizeG / recipe.Servings * servings
		}
	default:
		return "", ErrNoSource
	}

	var b strings.Builder
	b.WriteString(FormatQuantity(servings))
	b.WriteString(" x (")
	b.WriteString(size)
	b.WriteString(") ")
	b.WriteString(name)
	fmt.Fprintf(&b, " (%.1f oz/%.1f g)", Round(oz, 1), Round(g, 1))
	return b.String(), nil
}

// FormatQuantity prints a serving count without trailing zeros.
func FormatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

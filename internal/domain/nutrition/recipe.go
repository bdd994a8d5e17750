package nutrition

// Recipe is a composed dish. Nutrition, Price, SizeOz and SizeG are totals
// for the whole recipe, derived from its ingredients; per-serving values are
// computed for display.
type Recipe struct {
	ID         int       `json:"id,omitempty"`
	Cuisine    string    `json:"cuisine" validate:"max=100"`
	Name       string    `json:"name" validate:"required,max=100"`
	TotalYield string    `json:"total_yield" validate:"max=100"`
	Servings   float64   `json:"servings" validate:"gte=0"`
	SizeOz     float64   `json:"size_oz" validate:"gte=0"`
	SizeG      float64   `json:"size_g" validate:"gte=0"`
	Nutrition  Nutrition `json:"nutrition"`
	Price      float64   `json:"price" validate:"gte=0"`
}

// PerServing returns the nutrition for one serving. A recipe with zero
// servings reports zeros.
func (r Recipe) PerServing() Nutrition {
	return r.Nutrition.Divide(r.Servings)
}

// PricePerServing returns Price / Servings, or 0 when Servings is 0.
func (r Recipe) PricePerServing() float64 {
	if r.Servings == 0 {
		return 0
	}
	return r.Price / r.Servings
}

// Modifier converts the whole-recipe totals to a per-serving basis.
func (r Recipe) Modifier() (float64, error) {
	if r.Servings <= 0 {
		return 0, ErrRecipeNoServings
	}
	return 1 / r.Servings, nil
}

// Validate checks the field constraints declared in the struct tags.
func (r Recipe) Validate() error {
	return validateStruct(r)
}

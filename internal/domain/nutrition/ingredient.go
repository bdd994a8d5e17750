package nutrition

// SourceKind says what an ingredient line references.
type SourceKind string

const (
	SourceFood   SourceKind = "food"
	SourceRecipe SourceKind = "recipe"
)

// Valid reports whether k is one of the known kinds.
func (k SourceKind) Valid() bool {
	return k == SourceFood || k == SourceRecipe
}

// LineRef addresses a line by the record it references. A recipe holds at
// most one line per LineRef.
type LineRef struct {
	Kind     SourceKind
	SourceID int
}

// IngredientLine is one entry in the ledger of the recipe being edited.
// Exactly one of FoodID and RecipeID is set.
type IngredientLine struct {
	ID       string  `json:"id"`
	FoodID   *int    `json:"food_ingredient_id,omitempty"`
	RecipeID *int    `json:"recipe_ingredient_id,omitempty"`
	Servings float64 `json:"servings"`
	Ordinal  int     `json:"ordinal"`
	Summary  string  `json:"summary"`
	// Modifier is the scale recorded when the line was created. Updates and
	// removal reuse it so the running totals stay consistent.
	Modifier float64 `json:"modifier"`
}

// Ref returns the (kind, id) pair the line references.
func (l IngredientLine) Ref() LineRef {
	if l.FoodID != nil {
		return LineRef{Kind: SourceFood, SourceID: *l.FoodID}
	}
	if l.RecipeID != nil {
		return LineRef{Kind: SourceRecipe, SourceID: *l.RecipeID}
	}
	return LineRef{}
}

// Record converts the line to its wire form for the given owning recipe.
func (l IngredientLine) Record(recipeID int) IngredientRecord {
	return IngredientRecord{
		RecipeID:           recipeID,
		FoodIngredientID:   l.FoodID,
		RecipeIngredientID: l.RecipeID,
		Ordinal:            l.Ordinal,
		Servings:           l.Servings,
		Summary:            l.Summary,
	}
}

// IngredientRecord is an ingredient row as stored by the backend.
type IngredientRecord struct {
	ID                 int     `json:"id,omitempty"`
	RecipeID           int     `json:"recipe_id"`
	FoodIngredientID   *int    `json:"food_ingredient_id"`
	RecipeIngredientID *int    `json:"recipe_ingredient_id"`
	Ordinal            int     `json:"ordinal"`
	Servings           float64 `json:"servings"`
	Summary            string  `json:"summary"`
}

// Ref returns the (kind, id) pair the record references, or
// ErrAmbiguousSource when not exactly one reference is set.
func (r IngredientRecord) Ref() (LineRef, error) {
	switch {
	case r.FoodIngredientID != nil && r.RecipeIngredientID == nil:
		return LineRef{Kind: SourceFood, SourceID: *r.FoodIngredientID}, nil
	case r.RecipeIngredientID != nil && r.FoodIngredientID == nil:
		return LineRef{Kind: SourceRecipe, SourceID: *r.RecipeIngredientID}, nil
	default:
		return LineRef{}, ErrAmbiguousSource
	}
}

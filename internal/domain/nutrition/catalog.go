package nutrition

import (
	"encoding/json"
	"sort"
)

// Catalog indexes the foods and recipes an ingredient line may reference.
type Catalog struct {
	foods   map[int]Food
	recipes map[int]Recipe
}

// NewCatalog builds a catalog from the user's food and recipe lists.
func NewCatalog(foods []Food, recipes []Recipe) *Catalog {
	c := &Catalog{
		foods:   make(map[int]Food, len(foods)),
		recipes: make(map[int]Recipe, len(recipes)),
	}
	for _, f := range foods {
		c.foods[f.ID] = f
	}
	for _, r := range recipes {
		c.recipes[r.ID] = r
	}
	return c
}

// Food looks up a food by id.
func (c *Catalog) Food(id int) (Food, bool) {
	f, ok := c.foods[id]
	return f, ok
}

// Recipe looks up a recipe by id.
func (c *Catalog) Recipe(id int) (Recipe, bool) {
	r, ok := c.recipes[id]
	return r, ok
}

// Foods returns the foods ordered by display name.
func (c *Catalog) Foods() []Food {
	out := make([]Food, 0, len(c.foods))
	for _, f := range c.foods {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName() == out[j].DisplayName() {
			return out[i].ID < out[j].ID
		}
		return out[i].DisplayName() < out[j].DisplayName()
	})
	return out
}

// Recipes returns the recipes ordered by name.
func (c *Catalog) Recipes() []Recipe {
	out := make([]Recipe, 0, len(c.recipes))
	for _, r := range c.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// contribution is what one unit of a source adds to a recipe before it is
// scaled by servings and modifier.
type contribution struct {
	nutrition Nutrition
	price     float64
	oz        float64
	g         float64
	modifier  float64
	food      *Food
	recipe    *Recipe
}

// resolve finds the source for ref and computes its per-unit contribution.
func (c *Catalog) resolve(ref LineRef) (contribution, error) {
	switch ref.Kind {
	case SourceFood:
		f, ok := c.Food(ref.SourceID)
		if !ok {
			return contribution{}, ErrSourceNotFound
		}
		return contribution{
			nutrition: f.Nutrition,
			price:     f.PricePerServing(),
			oz:        f.SizeOz,
			g:         f.SizeG,
			modifier:  1,
			food:      &f,
		}, nil
	case SourceRecipe:
		r, ok := c.Recipe(ref.SourceID)
		if !ok {
			return contribution{}, ErrSourceNotFound
		}
		modifier, err := r.Modifier()
		if err != nil {
			return contribution{}, err
		}
		return contribution{
			nutrition: r.Nutrition,
			price:     r.Price,
			oz:        r.SizeOz,
			g:         r.SizeG,
			modifier:  modifier,
			recipe:    &r,
		}, nil
	default:
		return contribution{}, ErrInvalidKind
	}
}

type catalogJSON struct {
	Foods   []Food   `json:"foods"`
	Recipes []Recipe `json:"recipes"`
}

// MarshalJSON encodes the catalog as its food and recipe lists.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(catalogJSON{Foods: c.Foods(), Recipes: c.Recipes()})
}

// UnmarshalJSON restores a catalog encoded by MarshalJSON.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var v catalogJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = *NewCatalog(v.Foods, v.Recipes)
	return nil
}

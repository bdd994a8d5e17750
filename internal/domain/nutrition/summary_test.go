package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		food     *Food
		recipe   *Recipe
		servings float64
		want     string
	}{
		{
			name:     "FoodWithSubtype",
			food:     &Food{Name: "Milk", Subtype: "Whole", SizeDescription: "1 cup", SizeOz: 8, SizeG: 240},
			servings: 3,
			want:     "3 x (1 cup) Milk, Whole (24.0 oz/720.0 g)",
		},
		{
			name:     "FoodWithoutSubtype",
			food:     &Food{Name: "Rice", SizeDescription: "1/4 cup dry", SizeOz: 1.6, SizeG: 45},
			servings: 0.5,
			want:     "0.5 x (1/4 cup dry) Rice (0.8 oz/22.5 g)",
		},
		{
			name:     "RecipeUsesPerServingWeight",
			recipe:   &Recipe{Name: "Chili", Servings: 4, SizeOz: 50, SizeG: 1417.5},
			servings: 2,
			want:     "2 x (1 serving) Chili (25.0 oz/708.8 g)",
		},
		{
			name:     "RecipeWithoutServings",
			recipe:   &Recipe{Name: "Stock", SizeOz: 10},
			servings: 1,
			want:     "1 x (1 serving) Stock (0.0 oz/0.0 g)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(tt.food, tt.recipe, tt.servings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarize_NoSource(t *testing.T) {
	got, err := Summarize(nil, nil, 1)

	assert.ErrorIs(t, err, ErrNoSource)
	assert.Empty(t, got)
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2", FormatQuantity(2))
	assert.Equal(t, "0.25", FormatQuantity(0.25))
	assert.Equal(t, "1.5", FormatQuantity(1.50))
}

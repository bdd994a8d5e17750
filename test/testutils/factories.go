// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
)

// FoodBuilder provides a fluent interface for building test foods
type FoodBuilder struct {
	food nutrition.Food
}

// NewFoodBuilder creates a food builder with plausible random label data
func NewFoodBuilder() *FoodBuilder {
	return NewFoodBuilderWithSeed(time.Now().UnixNano())
}

// NewFoodBuilderWithSeed creates a food builder from a fixed seed
func NewFoodBuilderWithSeed(seed int64) *FoodBuilder {
	faker := gofakeit.New(seed)

	return &FoodBuilder{
		food: nutrition.Food{
			ID:              faker.Number(1, 100000),
			Group:           faker.RandomString([]string{"dairy", "grains", "proteins", "vegetables", "fruits"}),
			Name:            faker.Fruit(),
			Vendor:          faker.Company(),
			SizeDescription: "1 cup",
			SizeOz:          faker.Float64Range(1, 16),
			SizeG:           faker.Float64Range(28, 450),
			Servings:        float64(faker.Number(1, 12)),
			Price:           faker.Price(1, 20),
			Nutrition: nutrition.Nutrition{
				Calories:   float64(faker.Number(0, 500)),
				TotalFat:   faker.Float64Range(0, 30),
				TotalCarbs: faker.Float64Range(0, 60),
				Protein:    faker.Float64Range(0, 40),
				Sodium:     faker.Float64Range(0, 900),
			},
		},
	}
}

// WithID sets the food id
func (b *FoodBuilder) WithID(id int) *FoodBuilder {
	b.food.ID = id
	return b
}

// WithName sets the name and subtype
func (b *FoodBuilder) WithName(name, subtype string) *FoodBuilder {
	b.food.Name = name
	b.food.Subtype = subtype
	return b
}

// WithSize sets the serving size description and per-serving weight
func (b *FoodBuilder) WithSize(description string, oz, g float64) *FoodBuilder {
	b.food.SizeDescription = description
	b.food.SizeOz = oz
	b.food.SizeG = g
	return b
}

// WithServings sets the package yield
func (b *FoodBuilder) WithServings(servings float64) *FoodBuilder {
	b.food.Servings = servings
	return b
}

// WithPrice sets the package price
func (b *FoodBuilder) WithPrice(price float64) *FoodBuilder {
	b.food.Price = price
	return b
}

// WithNutrition sets the per-serving nutrition
func (b *FoodBuilder) WithNutrition(n nutrition.Nutrition) *FoodBuilder {
	b.food.Nutrition = n
	return b
}

// Build returns the food
func (b *FoodBuilder) Build() nutrition.Food {
	return b.food
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	recipe nutrition.Recipe
}

// NewRecipeBuilder creates a recipe builder with random totals
func NewRecipeBuilder() *RecipeBuilder {
	return NewRecipeBuilderWithSeed(time.Now().UnixNano())
}

// NewRecipeBuilderWithSeed creates a recipe builder from a fixed seed
func NewRecipeBuilderWithSeed(seed int64) *RecipeBuilder {
	faker := gofakeit.New(seed)

	return &RecipeBuilder{
		recipe: nutrition.Recipe{
			ID:         faker.Number(1, 100000),
			Cuisine:    faker.RandomString([]string{"italian", "mexican", "thai", "american"}),
			Name:       faker.Dinner(),
			TotalYield: "1 pot",
			Servings:   float64(faker.Number(1, 8)),
			SizeOz:     faker.Float64Range(8, 64),
			SizeG:      faker.Float64Range(220, 1800),
			Price:      faker.Price(3, 40),
			Nutrition: nutrition.Nutrition{
				Calories:   float64(faker.Number(200, 3000)),
				TotalFat:   faker.Float64Range(0, 120),
				TotalCarbs: faker.Float64Range(0, 300),
				Protein:    faker.Float64Range(0, 160),
			},
		},
	}
}

// WithID sets the recipe id
func (b *RecipeBuilder) WithID(id int) *RecipeBuilder {
	b.recipe.ID = id
	return b
}

// WithName sets the recipe name
func (b *RecipeBuilder) WithName(name string) *RecipeBuilder {
	b.recipe.Name = name
	return b
}

// WithServings sets the recipe yield
func (b *RecipeBuilder) WithServings(servings float64) *RecipeBuilder {
	b.recipe.Servings = servings
	return b
}

// WithTotals sets the whole-recipe nutrition and price
func (b *RecipeBuilder) WithTotals(n nutrition.Nutrition, price float64) *RecipeBuilder {
	b.recipe.Nutrition = n
	b.recipe.Price = price
	return b
}

// WithSize sets the whole-recipe weight
func (b *RecipeBuilder) WithSize(oz, g float64) *RecipeBuilder {
	b.recipe.SizeOz = oz
	b.recipe.SizeG = g
	return b
}

// Empty clears the totals, as for a recipe that has not been given
// ingredients yet
func (b *RecipeBuilder) Empty() *RecipeBuilder {
	b.recipe.Nutrition = nutrition.Nutrition{}
	b.recipe.Price = 0
	b.recipe.SizeOz = 0
	b.recipe.SizeG = 0
	return b
}

// Build returns the recipe
func (b *RecipeBuilder) Build() nutrition.Recipe {
	return b.recipe
}

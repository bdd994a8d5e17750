// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
)

// Credentials supplies the bearer token for a call and is told when the
// backend rejects it.
type Credentials interface {
	Token() (string, error)
	Invalidate(reason string)
}

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// FoodAPI covers the backend's food endpoints
type FoodAPI interface {
	ListFoods(ctx context.Context, creds Credentials) ([]nutrition.Food, error)
	GetFood(ctx context.Context, creds Credentials, id int) (nutrition.Food, error)
	CreateFood(ctx context.Context, creds Credentials, food nutrition.Food) (nutrition.Food, error)
	UpdateFood(ctx context.Context, creds Credentials, food nutrition.Food) (nutrition.Food, error)
	DeleteFood(ctx context.Context, creds Credentials, id int) error
}

// RecipeAPI covers the backend's recipe and ingredient endpoints
type RecipeAPI interface {
	ListRecipes(ctx context.Context, creds Credentials) ([]nutrition.Recipe, error)
	GetRecipe(ctx context.Context, creds Credentials, id int) (nutrition.Recipe, error)
	CreateRecipe(ctx context.Context, creds Credentials, recipe nutrition.Recipe) (nutrition.Recipe, error)
	UpdateRecipe(ctx context.Context, creds Credentials, recipe nutrition.Recipe) (nutrition.Recipe, error)
	DeleteRecipe(ctx context.Context, creds Credentials, id int) error

	// Ingredient sets are replaced wholesale: delete all, then insert all
	ListIngredients(ctx context.Context, creds Credentials, recipeID int) ([]nutrition.IngredientRecord, error)
	DeleteIngredients(ctx context.Context, creds Credentials, recipeID int) error
	AddIngredients(ctx context.Context, creds Credentials, recipeID int, records []nutrition.IngredientRecord) error
}

// AccountAPI covers login, registration and confirmation
type AccountAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, req RegisterRequest) error
	IsConfirmed(ctx context.Context, username string) (bool, error)
}

// BackendAPI is the full remote API the frontend consumes
type BackendAPI interface {
	FoodAPI
	RecipeAPI
	AccountAPI

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error
}

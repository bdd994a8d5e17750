// Package testutils provides mock implementations for testing
package testutils

import (
	"context"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockBackendAPI provides a mock implementation of outbound.BackendAPI
type MockBackendAPI struct {
	mock.Mock
}

var _ outbound.BackendAPI = (*MockBackendAPI)(nil)

// NewMockBackendAPI creates a new mock backend
func NewMockBackendAPI() *MockBackendAPI {
	return &MockBackendAPI{}
}

// ListFoods lists foods
func (m *MockBackendAPI) ListFoods(ctx context.Context, creds outbound.Credentials) ([]nutrition.Food, error) {
	args := m.Called(ctx, creds)
	foods, _ := args.Get(0).([]nutrition.Food)
	return foods, args.Error(1)
}

// GetFood gets a food
func (m *MockBackendAPI) GetFood(ctx context.Context, creds outbound.Credentials, id int) (nutrition.Food, error) {
	args := m.Called(ctx, creds, id)
	food, _ := args.Get(0).(nutrition.Food)
	return food, args.Error(1)
}

// CreateFood creates a food
func (m *MockBackendAPI) CreateFood(ctx context.Context, creds outbound.Credentials, food nutrition.Food) (nutrition.Food, error) {
	args := m.Called(ctx, creds, food)
	created, _ := args.Get(0).(nutrition.Food)
	return created, args.Error(1)
}

// UpdateFood updates a food
func (m *MockBackendAPI) UpdateFood(ctx context.Context, creds outbound.Credentials, food nutrition.Food) (nutrition.Food, error) {
	args := m.Called(ctx, creds, food)
	updated, _ := args.Get(0).(nutrition.Food)
	return updated, args.Error(1)
}

// DeleteFood deletes a food
func (m *MockBackendAPI) DeleteFood(ctx context.Context, creds outbound.Credentials, id int) error {
	args := m.Called(ctx, creds, id)
	return args.Error(0)
}

// ListRecipes lists recipes
func (m *MockBackendAPI) ListRecipes(ctx context.Context, creds outbound.Credentials) ([]nutrition.Recipe, error) {
	args := m.Called(ctx, creds)
	recipes, _ := args.Get(0).([]nutrition.Recipe)
	return recipes, args.Error(1)
}

// GetRecipe gets a recipe
func (m *MockBackendAPI) GetRecipe(ctx context.Context, creds outbound.Credentials, id int) (nutrition.Recipe, error) {
	args := m.Called(ctx, creds, id)
	recipe, _ := args.Get(0).(nutrition.Recipe)
	return recipe, args.Error(1)
}

// CreateRecipe creates a recipe
func (m *MockBackendAPI) CreateRecipe(ctx context.Context, creds outbound.Credentials, recipe nutrition.Recipe) (nutrition.Recipe, error) {
	args := m.Called(ctx, creds, recipe)
	created, _ := args.Get(0).(nutrition.Recipe)
	return created, args.Error(1)
}

// UpdateRecipe updates a recipe
func (m *MockBackendAPI) UpdateRecipe(ctx context.Context, creds outbound.Credentials, recipe nutrition.Recipe) (nutrition.Recipe, error) {
	args := m.Called(ctx, creds, recipe)
	updated, _ := args.Get(0).(nutrition.Recipe)
	return updated, args.Error(1)
}

// DeleteRecipe deletes a recipe
func (m *MockBackendAPI) DeleteRecipe(ctx context.Context, creds outbound.Credentials, id int) error {
	args := m.Called(ctx, creds, id)
	return args.Error(0)
}

// ListIngredients lists a recipe's ingredients
func (m *MockBackendAPI) ListIngredients(ctx context.Context, creds outbound.Credentials, recipeID int) ([]nutrition.IngredientRecord, error) {
	args := m.Called(ctx, creds, recipeID)
	records, _ := args.Get(0).([]nutrition.IngredientRecord)
	return records, args.Error(1)
}

// DeleteIngredients deletes a recipe's ingredients
func (m *MockBackendAPI) DeleteIngredients(ctx context.Context, creds outbound.Credentials, recipeID int) error {
	args := m.Called(ctx, creds, recipeID)
	return args.Error(0)
}

// AddIngredients inserts a recipe's ingredients
func (m *MockBackendAPI) AddIngredients(ctx context.Context, creds outbound.Credentials, recipeID int, records []nutrition.IngredientRecord) error {
	args := m.Called(ctx, creds, recipeID, records)
	return args.Error(0)
}

// Login logs in
func (m *MockBackendAPI) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

// Register registers an account
func (m *MockBackendAPI) Register(ctx context.Context, req outbound.RegisterRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// IsConfirmed checks account confirmation
func (m *MockBackendAPI) IsConfirmed(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// Ping pings the backend
func (m *MockBackendAPI) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

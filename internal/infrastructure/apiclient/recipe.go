package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
)

// ListRecipes fetches the user's recipes
func (c *Client) ListRecipes(ctx context.Context, creds outbound.Credentials) ([]nutrition.Recipe, error) {
	var recipes []nutrition.Recipe
	err := c.do(ctx, request{method: http.MethodGet, endpoint: "/recipe", path: "/recipe", creds: creds}, &recipes)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe fetches a single recipe by ID
func (c *Client) GetRecipe(ctx context.Context, creds outbound.Credentials, id int) (nutrition.Recipe, error) {
	var recipe nutrition.Recipe
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "/recipe/{id}",
		path:     recipePath(id),
		creds:    creds,
	}, &recipe)
	return recipe, err
}

// CreateRecipe stores a new recipe header and returns it with its assigned ID
func (c *Client) CreateRecipe(ctx context.Context, creds outbound.Credentials, recipe nutrition.Recipe) (nutrition.Recipe, error) {
	recipe.ID = 0
	created := recipe
	err := c.do(ctx, request{method: http.MethodPost, endpoint: "/recipe", path: "/recipe", creds: creds, body: recipe}, &created)
	return created, err
}

// UpdateRecipe replaces a stored recipe header
func (c *Client) UpdateRecipe(ctx context.Context, creds outbound.Credentials, recipe nutrition.Recipe) (nutrition.Recipe, error) {
	updated := recipe
	err := c.do(ctx, request{method: http.MethodPut, endpoint: "/recipe", path: "/recipe", creds: creds, body: recipe}, &updated)
	return updated, err
}

// DeleteRecipe removes a recipe header
func (c *Client) DeleteRecipe(ctx context.Context, creds outbound.Credentials, id int) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		endpoint: "/recipe/{id}",
		path:     recipePath(id),
		creds:    creds,
	}, nil)
}

// ListIngredients fetches a recipe's stored ingredient set
func (c *Client) ListIngredients(ctx context.Context, creds outbound.Credentials, recipeID int) ([]nutrition.IngredientRecord, error) {
	var records []nutrition.IngredientRecord
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "/recipe/{id}/ingredient",
		path:     recipePath(recipeID) + "/ingredient",
		creds:    creds,
	}, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteIngredients removes every stored ingredient of a recipe
func (c *Client) DeleteIngredients(ctx context.Context, creds outbound.Credentials, recipeID int) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		endpoint: "/recipe/{id}/ingredient",
		path:     recipePath(recipeID) + "/ingredient",
		creds:    creds,
	}, nil)
}

// AddIngredients bulk-inserts ingredient records. The body is a JSON array.
func (c *Client) AddIngredients(ctx context.Context, creds outbound.Credentials, recipeID int, records []nutrition.IngredientRecord) error {
	if records == nil {
		records = []nutrition.IngredientRecord{}
	}
	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/recipe/{id}/ingredient",
		path:     recipePath(recipeID) + "/ingredient",
		creds:    creds,
		body:     records,
	}, nil)
}

func recipePath(id int) string {
	return "/recipe/" + strconv.Itoa(id)
}

package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
)

// ListFoods fetches the user's foods
func (c *Client) ListFoods(ctx context.Context, creds outbound.Credentials) ([]nutrition.Food, error) {
	var foods []nutrition.Food
	err := c.do(ctx, request{method: http.MethodGet, endpoint: "/food", path: "/food", creds: creds}, &foods)
	if err != nil {
		return nil, err
	}
	return foods, nil
}

// GetFood fetches a single food by ID
func (c *Client) GetFood(ctx context.Context, creds outbound.Credentials, id int) (nutrition.Food, error) {
	var food nutrition.Food
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "/food/{id}",
		path:     "/food/" + strconv.Itoa(id),
		creds:    creds,
	}, &food)
	return food, err
}

// CreateFood stores a new food and returns it with its assigned ID
func (c *Client) CreateFood(ctx context.Context, creds outbound.Credentials, food nutrition.Food) (nutrition.Food, error) {
	food.ID = 0
	created := food
	err := c.do(ctx, request{method: http.MethodPost, endpoint: "/food", path: "/food", creds: creds, body: food}, &created)
	return created, err
}

// UpdateFood replaces a stored food. The ID travels in the body.
func (c *Client) UpdateFood(ctx context.Context, creds outbound.Credentials, food nutrition.Food) (nutrition.Food, error) {
	updated := food
	err := c.do(ctx, request{method: http.MethodPut, endpoint: "/food", path: "/food", creds: creds, body: food}, &updated)
	return updated, err
}

// DeleteFood removes a food
func (c *Client) DeleteFood(ctx context.Context, creds outbound.Credentials, id int) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		endpoint: "/food/{id}",
		path:     "/food/" + strconv.Itoa(id),
		creds:    creds,
	}, nil)
}

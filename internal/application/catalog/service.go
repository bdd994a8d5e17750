// Package catalog provides the application layer for food and recipe
// records
package catalog

import (
	"context"
	"sort"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/ports/inbound"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
	"go.uber.org/zap"
)

// Service implements the food and recipe list use cases
type Service struct {
	api    outbound.BackendAPI
	logger *zap.Logger
}

var _ inbound.CatalogService = (*Service)(nil)

// NewService creates a new catalog service
func NewService(api outbound.BackendAPI, logger *zap.Logger) *Service {
	return &Service{
		api:    api,
		logger: logger.Named("catalog-service"),
	}
}

// ListFoods returns the user's foods ordered by name and subtype
func (s *Service) ListFoods(ctx context.Context, creds outbound.Credentials) ([]nutrition.Food, error) {
	foods, err := s.api.ListFoods(ctx, creds)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(foods, func(i, j int) bool {
		return foods[i].DisplayName() < foods[j].DisplayName()
	})
	return foods, nil
}

// GetFood returns one food
func (s *Service) GetFood(ctx context.Context, creds outbound.Credentials, id int) (nutrition.Food, error) {
	return s.api.GetFood(ctx, creds, id)
}

// SaveFood validates a food and creates or updates it depending on
// whether it has an ID
func (s *Service) SaveFood(ctx context.Context, creds outbound.Credentials, food nutrition.Food) (nutrition.Food, error) {
	if err := food.Validate(); err != nil {
		return nutrition.Food{}, errors.NewValidationError(err)
	}

	if food.ID == 0 {
		created, err := s.api.CreateFood(ctx, creds, food)
		if err != nil {
			return nutrition.Food{}, err
		}
		s.logger.Info("Food created", zap.Int("food_id", created.ID), zap.String("name", created.Name))
		return created, nil
	}

	updated, err := s.api.UpdateFood(ctx, creds, food)
	if err != nil {
		return nutrition.Food{}, err
	}
	s.logger.Info("Food updated", zap.Int("food_id", updated.ID))
	return updated, nil
}

// DeleteFood removes a food
func (s *Service) DeleteFood(ctx context.Context, creds outbound.Credentials, id int) error {
	if err := s.api.DeleteFood(ctx, creds, id); err != nil {
		return err
	}
	s.logger.Info("Food deleted", zap.Int("food_id", id))
	return nil
}

// ListRecipes returns the user's recipes ordered by name
func (s *Service) ListRecipes(ctx context.Context, creds outbound.Credentials) ([]nutrition.Recipe, error) {
	recipes, err := s.api.ListRecipes(ctx, creds)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].Name < recipes[j].Name
	})
	return recipes, nil
}

// GetRecipe returns one recipe header
func (s *Service) GetRecipe(ctx context.Context, creds outbound.Credentials, id int) (nutrition.Recipe, error) {
	return s.api.GetRecipe(ctx, creds, id)
}

// DeleteRecipe removes a recipe's ingredient set and then the recipe
func (s *Service) DeleteRecipe(ctx context.Context, creds outbound.Credentials, id int) error {
	if err := s.api.DeleteIngredients(ctx, creds, id); err != nil && !errors.Is(err, errors.CodeNotFound) {
		return err
	}
	if err := s.api.DeleteRecipe(ctx, creds, id); err != nil {
		return err
	}
	s.logger.Info("Recipe deleted", zap.Int("recipe_id", id))
	return nil
}

// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
)

// CatalogService defines the food and recipe record use cases
type CatalogService interface {
	ListFoods(ctx context.Context, creds outbound.Credentials) ([]nutrition.Food, error)
	GetFood(ctx context.Context, creds outbound.Credentials, id int) (nutrition.Food, error)
	SaveFood(ctx context.Context, creds outbound.Credentials, food nutrition.Food) (nutrition.Food, error)
	DeleteFood(ctx context.Context, creds outbound.Credentials, id int) error

	ListRecipes(ctx context.Context, creds outbound.Credentials) ([]nutrition.Recipe, error)
	GetRecipe(ctx context.Context, creds outbound.Credentials, id int) (nutrition.Recipe, error)
	DeleteRecipe(ctx context.Context, creds outbound.Credentials, id int) error
}

// EditorService defines the recipe editing use cases. Drafts live in the
// caller's session, identified by sessionID.
type EditorService interface {
	// Open loads a recipe for editing; recipeID 0 starts a new one
	Open(ctx context.Context, sessionID string, creds outbound.Credentials, recipeID int) (*nutrition.Draft, error)
	Draft(ctx context.Context, sessionID, draftID string) (*nutrition.Draft, error)
	Apply(ctx context.Context, sessionID, draftID string, op LedgerOperation) (*nutrition.Draft, error)
	SetHeader(ctx context.Context, sessionID, draftID string, header RecipeHeader) (*nutrition.Draft, error)
	// Save writes the header, then replaces the stored ingredient set
	Save(ctx context.Context, sessionID, draftID string, creds outbound.Credentials) (nutrition.Recipe, error)
	Discard(ctx context.Context, sessionID, draftID string) error
}

// AccountService defines login, registration and confirmation
type AccountService interface {
	Login(ctx context.Context, sessionID, username, password string) error
	Register(ctx context.Context, sessionID string, req outbound.RegisterRequest) error
	ConfirmationStatus(ctx context.Context, sessionID string) (ConfirmationStatus, error)
	AwaitConfirmation(ctx context.Context, username string, interval time.Duration) error
	Logout(ctx context.Context, sessionID string) error
}

// OperationKind names a ledger edit
type OperationKind string

// Ledger edits
const (
	OpAdd      OperationKind = "add"
	OpUpdate   OperationKind = "update"
	OpRemove   OperationKind = "remove"
	OpMoveUp   OperationKind = "up"
	OpMoveDown OperationKind = "down"
)

// LedgerOperation is one edit of a draft's ingredient list. Add uses
// Source, SourceID and Servings; the others address LineID.
type LedgerOperation struct {
	Kind     OperationKind
	LineID   string
	Source   nutrition.SourceKind
	SourceID int
	Servings float64
}

// RecipeHeader holds the descriptive fields of a recipe
type RecipeHeader struct {
	Name       string
	Cuisine    string
	TotalYield string
	Servings   float64
}

// ConfirmationStatus reports a pending registration
type ConfirmationStatus struct {
	Username  string `json:"username"`
	Confirmed bool   `json:"confirmed"`
}

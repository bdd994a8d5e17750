package nutrition

import "time"

// Ledger events, collected on the ledger and drained by the editor.

// Event names
const (
	EventIngredientAdded   = "ingredient.added"
	EventIngredientUpdated = "ingredient.updated"
	EventIngredientRemoved = "ingredient.removed"
	EventIngredientMoved   = "ingredient.moved"
)

// IngredientAddedEvent is raised when a line is added
type IngredientAddedEvent struct {
	RecipeID int
	Ref      LineRef
	Servings float64
	AddedAt  time.Time
}

func (e IngredientAddedEvent) EventName() string {
	return EventIngredientAdded
}

func (e IngredientAddedEvent) OccurredAt() time.Time {
	return e.AddedAt
}

// IngredientUpdatedEvent is raised when a line's servings change
type IngredientUpdatedEvent struct {
	RecipeID    int
	Ref         LineRef
	OldServings float64
	NewServings float64
	UpdatedAt   time.Time
}

func (e IngredientUpdatedEvent) EventName() string {
	return EventIngredientUpdated
}

func (e IngredientUpdatedEvent) OccurredAt() time.Time {
	return e.UpdatedAt
}

// IngredientRemovedEvent is raised when a line is removed
type IngredientRemovedEvent struct {
	RecipeID  int
	Ref       LineRef
	Servings  float64
	RemovedAt time.Time
}

func (e IngredientRemovedEvent) EventName() string {
	return EventIngredientRemoved
}

func (e IngredientRemovedEvent) OccurredAt() time.Time {
	return e.RemovedAt
}

// IngredientMovedEvent is raised when a line swaps places with a neighbour
type IngredientMovedEvent struct {
	RecipeID int
	Ref      LineRef
	From     int
	To       int
	MovedAt  time.Time
}

func (e IngredientMovedEvent) EventName() string {
	return EventIngredientMoved
}

func (e IngredientMovedEvent) OccurredAt() time.Time {
	return e.MovedAt
}

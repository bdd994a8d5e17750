package nutrition

import "errors"

// Domain errors for ledger and record operations

var (
	// Selection errors
	ErrNoSelection      = errors.New("select a food or recipe to add")
	ErrNoSource         = errors.New("no food or recipe supplied")
	ErrSourceNotFound   = errors.New("referenced food or recipe not found")
	ErrInvalidKind      = errors.New("ingredient must reference a food or a recipe")
	ErrAmbiguousSource  = errors.New("ingredient must reference exactly one of food or recipe")
	ErrInvalidServings  = errors.New("servings must be greater than 0")
	ErrRecipeNoServings = errors.New("referenced recipe has no servings")

	// Ledger errors
	ErrLineNotFound  = errors.New("ingredient line not found")
	ErrDuplicateLine = errors.New("ingredient already exists in recipe")
	ErrSelfReference = errors.New("a recipe cannot include itself")
)

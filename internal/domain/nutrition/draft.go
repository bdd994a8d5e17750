package nutrition

import (
	"time"

	"github.com/google/uuid"
)

// Draft is a recipe open for editing: its ledger plus the snapshot of the
// foods and recipes that were loaded when it was opened.
type Draft struct {
	ID       string    `json:"id"`
	Ledger   *Ledger   `json:"ledger"`
	Catalog  *Catalog  `json:"catalog"`
	OpenedAt time.Time `json:"opened_at"`
}

// NewDraft wraps a ledger and catalog under a fresh draft id.
func NewDraft(ledger *Ledger, cat *Catalog) *Draft {
	return &Draft{
		ID:       uuid.NewString(),
		Ledger:   ledger,
		Catalog:  cat,
		OpenedAt: time.Now(),
	}
}

// IsNew reports whether the recipe has never been saved.
func (d *Draft) IsNew() bool {
	return d.Ledger.Recipe().ID == 0
}

// AddLine appends a line for the given source.
func (d *Draft) AddLine(kind SourceKind, sourceID int, servings float64) (IngredientLine, error) {
	return d.Ledger.Add(d.Catalog, kind, sourceID, servings)
}

// UpdateLine changes the servings of the line with the given id.
func (d *Draft) UpdateLine(lineID string, servings float64) error {
	ref, ok := d.Ledger.Find(lineID)
	if !ok {
		return ErrLineNotFound
	}
	return d.Ledger.Update(d.Catalog, ref, servings)
}

// RemoveLine deletes the line with the given id.
func (d *Draft) RemoveLine(lineID string) error {
	ref, ok := d.Ledger.Find(lineID)
	if !ok {
		return ErrLineNotFound
	}
	return d.Ledger.Remove(d.Catalog, ref)
}

// MoveLineUp moves the line with the given id one place up.
func (d *Draft) MoveLineUp(lineID string) error {
	ref, ok := d.Ledger.Find(lineID)
	if !ok {
		return ErrLineNotFound
	}
	return d.Ledger.MoveUp(ref)
}

// MoveLineDown moves the line with the given id one place down.
func (d *Draft) MoveLineDown(lineID string) error {
	ref, ok := d.Ledger.Find(lineID)
	if !ok {
		return ErrLineNotFound
	}
	return d.Ledger.MoveDown(ref)
}

package nutrition

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lastcallsoftware/trackeats/internal/domain/shared"
)

// Ledger is the ordered ingredient list of the recipe being edited. It owns
// a copy of that recipe, whose Nutrition, Price, SizeOz and SizeG are kept
// as running totals of the lines' contributions.
//
// Lines are stored in ordinal order, so a line's index is its ordinal. A
// Ledger is not safe for concurrent use.
type Ledger struct {
	shared.AggregateRoot

	recipe Recipe
	lines  []IngredientLine
	newID  func() string
}

// NewLedger starts an empty ledger for recipe. The recipe's totals are
// taken as-is.
func NewLedger(recipe Recipe) *Ledger {
	return &Ledger{recipe: recipe}
}

// LoadLedger seeds a ledger from persisted ingredient records. Totals are
// not touched since the persisted recipe already carries them. Ordinals are
// renumbered to a contiguous range following the stored order, and
// summaries are regenerated when the source is still in the catalog.
func LoadLedger(recipe Recipe, cat *Catalog, records []IngredientRecord) (*Ledger, error) {
	l := NewLedger(recipe)

	sorted := make([]IngredientRecord, len(records))
	copy(sorted, records)
	sortRecords(sorted)

	seen := make(map[LineRef]bool, len(sorted))
	for _, rec := range sorted {
		ref, err := rec.Ref()
		if err != nil {
			return nil, err
		}
		if seen[ref] {
			return nil, ErrDuplicateLine
		}
		seen[ref] = true

		line := newLine(l.nextID(), ref, rec.Servings, len(l.lines))
		line.Summary = rec.Summary
		line.Modifier = 1
		if c, err := cat.resolve(ref); err == nil {
			line.Modifier = c.modifier
			if s, err := Summarize(c.food, c.recipe, rec.Servings); err == nil {
				line.Summary = s
			}
		}
		l.lines = append(l.lines, line)
	}
	return l, nil
}

// Recipe returns the owning recipe with its running totals.
func (l *Ledger) Recipe() Recipe {
	return l.recipe
}

// PerServing returns the running totals divided by the recipe's servings.
func (l *Ledger) PerServing() Nutrition {
	return l.recipe.PerServing()
}

// SetRecipeID records the id the backend assigned to a new recipe.
func (l *Ledger) SetRecipeID(id int) {
	l.recipe.ID = id
}

// SetHeader replaces the descriptive fields of the owning recipe. Totals
// are unaffected.
func (l *Ledger) SetHeader(name, cuisine, totalYield string, servings float64) error {
	if math.IsNaN(servings) || math.IsInf(servings, 0) || servings < 0 {
		return ErrInvalidServings
	}
	l.recipe.Name = name
	l.recipe.Cuisine = cuisine
	l.recipe.TotalYield = totalYield
	l.recipe.Servings = servings
	return nil
}

// Len returns the number of lines.
func (l *Ledger) Len() int {
	return len(l.lines)
}

// Lines returns a copy of the lines in ordinal order.
func (l *Ledger) Lines() []IngredientLine {
	out := make([]IngredientLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// Find resolves a line id to the reference of the line carrying it.
func (l *Ledger) Find(lineID string) (LineRef, bool) {
	for _, line := range l.lines {
		if line.ID == lineID {
			return line.Ref(), true
		}
	}
	return LineRef{}, false
}

// Add appends a line referencing the given food or recipe and adds its
// contribution to the running totals. A recipe source is normalised to one
// serving with modifier 1/servings before scaling.
func (l *Ledger) Add(cat *Catalog, kind SourceKind, sourceID int, servings float64) (IngredientLine, error) {
	if !kind.Valid() || sourceID <= 0 {
		return IngredientLine{}, ErrNoSelection
	}
	if !validServings(servings) {
		return IngredientLine{}, ErrInvalidServings
	}

	ref := LineRef{Kind: kind, SourceID: sourceID}
	if l.indexOf(ref) >= 0 {
		return IngredientLine{}, ErrDuplicateLine
	}
	if kind == SourceRecipe && l.recipe.ID != 0 && sourceID == l.recipe.ID {
		return IngredientLine{}, ErrSelfReference
	}

	c, err := cat.resolve(ref)
	if err != nil {
		return IngredientLine{}, err
	}
	summary, err := Summarize(c.food, c.recipe, servings)
	if err != nil {
		return IngredientLine{}, err
	}

	line := newLine(l.nextID(), ref, servings, len(l.lines))
	line.Summary = summary
	line.Modifier = c.modifier

	l.apply(c, servings, c.modifier)
	l.lines = append(l.lines, line)

	l.AddEvent(IngredientAddedEvent{
		RecipeID: l.recipe.ID,
		Ref:      ref,
		Servings: servings,
		AddedAt:  time.Now(),
	})
	return line, nil
}

// Update changes the servings of an existing line, adjusting the running
// totals by the difference at the line's recorded modifier.
func (l *Ledger) Update(cat *Catalog, ref LineRef, servings float64) error {
	i := l.indexOf(ref)
	if i < 0 {
		return ErrLineNotFound
	}
	if !validServings(servings) {
		return ErrInvalidServings
	}

	c, err := cat.resolve(ref)
	if err != nil {
		return err
	}
	summary, err := Summarize(c.food, c.recipe, servings)
	if err != nil {
		return err
	}

	line := l.lines[i]
	old := line.Servings
	l.apply(c, servings-old, line.Modifier)

	line.Servings = servings
	line.Summary = summary
	l.lines[i] = line

	l.AddEvent(IngredientUpdatedEvent{
		RecipeID:    l.recipe.ID,
		Ref:         ref,
		OldServings: old,
		NewServings: servings,
		UpdatedAt:   time.Now(),
	})
	return nil
}

// Remove deletes a line, reverses its contribution and closes the ordinal
// gap it leaves. A line whose source is no longer in the catalog is
// dropped with the totals left as they are, since its contribution can no
// longer be computed.
func (l *Ledger) Remove(cat *Catalog, ref LineRef) error {
	i := l.indexOf(ref)
	if i < 0 {
		return ErrLineNotFound
	}

	c, err := cat.resolve(ref)
	if err != nil && !errors.Is(err, ErrSourceNotFound) {
		return err
	}

	line := l.lines[i]
	if err == nil {
		l.apply(c, line.Servings, -line.Modifier)
	}

	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	for j := i; j < len(l.lines); j++ {
		l.lines[j].Ordinal--
	}

	l.AddEvent(IngredientRemovedEvent{
		RecipeID:  l.recipe.ID,
		Ref:       ref,
		Servings:  line.Servings,
		RemovedAt: time.Now(),
	})
	return nil
}

// MoveUp swaps a line with the one before it. It is a no-op for the first
// line.
func (l *Ledger) MoveUp(ref LineRef) error {
	i := l.indexOf(ref)
	if i < 0 {
		return ErrLineNotFound
	}
	if i == 0 {
		return nil
	}
	l.swap(i, i-1)
	return nil
}

// MoveDown swaps a line with the one after it. It is a no-op for the last
// line.
func (l *Ledger) MoveDown(ref LineRef) error {
	i := l.indexOf(ref)
	if i < 0 {
		return ErrLineNotFound
	}
	if i == len(l.lines)-1 {
		return nil
	}
	l.swap(i, i+1)
	return nil
}

// Records returns the lines in their wire form, in ordinal order, for the
// owning recipe's current id.
func (l *Ledger) Records() []IngredientRecord {
	out := make([]IngredientRecord, len(l.lines))
	for i, line := range l.lines {
		out[i] = line.Record(l.recipe.ID)
	}
	return out
}

// WithIDGenerator replaces the line id generator. Used by tests.
func (l *Ledger) WithIDGenerator(gen func() string) *Ledger {
	l.newID = gen
	return l
}

// validServings accepts finite quantities greater than zero
func validServings(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func (l *Ledger) apply(c contribution, servings, modifier float64) {
	Accumulate(&l.recipe.Nutrition, c.nutrition, servings, modifier)
	AccumulatePrice(&l.recipe.Price, c.price, servings, modifier)
	l.recipe.SizeOz += c.oz * servings * modifier
	l.recipe.SizeG += c.g * servings * modifier
}

func (l *Ledger) swap(i, j int) {
	l.lines[i], l.lines[j] = l.lines[j], l.lines[i]
	l.lines[i].Ordinal = i
	l.lines[j].Ordinal = j

	l.AddEvent(IngredientMovedEvent{
		RecipeID: l.recipe.ID,
		Ref:      l.lines[j].Ref(),
		From:     i,
		To:       j,
		MovedAt:  time.Now(),
	})
}

func (l *Ledger) indexOf(ref LineRef) int {
	for i, line := range l.lines {
		if line.Ref() == ref {
			return i
		}
	}
	return -1
}

func (l *Ledger) nextID() string {
	if l.newID != nil {
		return l.newID()
	}
	return uuid.NewString()
}

func newLine(id string, ref LineRef, servings float64, ordinal int) IngredientLine {
	line := IngredientLine{
		ID:       id,
		Servings: servings,
		Ordinal:  ordinal,
	}
	sourceID := ref.SourceID
	if ref.Kind == SourceFood {
		line.FoodID = &sourceID
	} else {
		line.RecipeID = &sourceID
	}
	return line
}

func sortRecords(records []IngredientRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Ordinal < records[j].Ordinal
	})
}

type ledgerJSON struct {
	Recipe Recipe           `json:"recipe"`
	Lines  []IngredientLine `json:"lines"`
}

// MarshalJSON encodes the recipe and its lines so a ledger can live in a
// session store.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(ledgerJSON{Recipe: l.recipe, Lines: l.lines})
}

// UnmarshalJSON restores a ledger encoded by MarshalJSON.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var v ledgerJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	l.recipe = v.Recipe
	l.lines = v.Lines
	for i := range l.lines {
		l.lines[i].Ordinal = i
	}
	return nil
}

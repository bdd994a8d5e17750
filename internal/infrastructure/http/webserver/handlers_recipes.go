package webserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/ports/inbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
)

func (s *WebServer) handleRecipeList(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.deps.Catalog.ListRecipes(r.Context(), credentials(r))
	if err != nil {
		s.fail(w, r, err, "recipes", map[string]interface{}{"Title": "Recipes - TrackEats"})
		return
	}
	s.render(w, r, http.StatusOK, "recipes", map[string]interface{}{
		"Title":   "Recipes - TrackEats",
		"Recipes": recipes,
		"Flash":   s.takeFlash(r),
	})
}

func (s *WebServer) handleNewRecipe(w http.ResponseWriter, r *http.Request) {
	s.openDraft(w, r, 0)
}

func (s *WebServer) handleEditRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	s.openDraft(w, r, id)
}

func (s *WebServer) openDraft(w http.ResponseWriter, r *http.Request, recipeID int) {
	draft, err := s.deps.Editor.Open(r.Context(), currentSession(r).ID, credentials(r), recipeID)
	if err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	http.Redirect(w, r, draftURL(draft.ID), http.StatusSeeOther)
}

func (s *WebServer) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	if err := s.deps.Catalog.DeleteRecipe(r.Context(), credentials(r), id); err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	s.setFlash(r, "Recipe deleted")
	http.Redirect(w, r, "/recipes", http.StatusSeeOther)
}

func (s *WebServer) handleDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.deps.Editor.Draft(r.Context(), currentSession(r).ID, chi.URLParam(r, "draft"))
	if err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	s.renderDraft(w, r, http.StatusOK, draft, "")
}

func (s *WebServer) handleDraftHeader(w http.ResponseWriter, r *http.Request) {
	p := formParser{r: r}
	header := inbound.RecipeHeader{
		Name:       strings.TrimSpace(r.PostFormValue("name")),
		Cuisine:    strings.TrimSpace(r.PostFormValue("cuisine")),
		TotalYield: strings.TrimSpace(r.PostFormValue("total_yield")),
		Servings:   p.float("servings", "Servings"),
	}
	if err := p.err(); err != nil {
		s.draftError(w, r, err)
		return
	}
	s.afterEdit(w, r, func(sessionID, draftID string) (*nutrition.Draft, error) {
		return s.deps.Editor.SetHeader(r.Context(), sessionID, draftID, header)
	})
}

func (s *WebServer) handleAddIngredient(w http.ResponseWriter, r *http.Request) {
	// the select submits "food:12" or "recipe:3"
	kind, rawID, _ := strings.Cut(r.PostFormValue("source"), ":")
	sourceID, err := strconv.Atoi(rawID)
	if err != nil {
		s.draftError(w, r, errors.NewAppError(errors.CodeValidationFailed, "Choose a food or recipe to add", ""))
		return
	}

	p := formParser{r: r}
	op := inbound.LedgerOperation{
		Kind:     inbound.OpAdd,
		Source:   nutrition.SourceKind(kind),
		SourceID: sourceID,
		Servings: p.float("servings", "Servings"),
	}
	if err := p.err(); err != nil {
		s.draftError(w, r, err)
		return
	}
	s.afterEdit(w, r, func(sessionID, draftID string) (*nutrition.Draft, error) {
		return s.deps.Editor.Apply(r.Context(), sessionID, draftID, op)
	})
}

func (s *WebServer) handleLineOperation(kind inbound.OperationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op := inbound.LedgerOperation{Kind: kind, LineID: chi.URLParam(r, "line")}
		if kind == inbound.OpUpdate {
			p := formParser{r: r}
			op.Servings = p.float("servings", "Servings")
			if err := p.err(); err != nil {
				s.draftError(w, r, err)
				return
			}
		}
		s.afterEdit(w, r, func(sessionID, draftID string) (*nutrition.Draft, error) {
			return s.deps.Editor.Apply(r.Context(), sessionID, draftID, op)
		})
	}
}

func (s *WebServer) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.deps.Editor.Save(r.Context(), currentSession(r).ID, chi.URLParam(r, "draft"), credentials(r))
	if err != nil {
		s.draftError(w, r, err)
		return
	}
	s.setFlash(r, fmt.Sprintf("Saved %s", recipe.Name))
	http.Redirect(w, r, "/recipes", http.StatusSeeOther)
}

func (s *WebServer) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Editor.Discard(r.Context(), currentSession(r).ID, chi.URLParam(r, "draft")); err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	http.Redirect(w, r, "/recipes", http.StatusSeeOther)
}

// afterEdit runs a draft edit and sends the browser back to the form
func (s *WebServer) afterEdit(w http.ResponseWriter, r *http.Request, edit func(sessionID, draftID string) (*nutrition.Draft, error)) {
	draft, err := edit(currentSession(r).ID, chi.URLParam(r, "draft"))
	if err != nil {
		s.draftError(w, r, err)
		return
	}
	http.Redirect(w, r, draftURL(draft.ID), http.StatusSeeOther)
}

// draftError shows the draft form again with err inline. The draft itself
// is unchanged.
func (s *WebServer) draftError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errors.CodeUnauthorized) {
		s.fail(w, r, err, "error", nil)
		return
	}
	draft, loadErr := s.deps.Editor.Draft(r.Context(), currentSession(r).ID, chi.URLParam(r, "draft"))
	if loadErr != nil {
		s.fail(w, r, loadErr, "error", nil)
		return
	}
	s.renderDraft(w, r, errors.HTTPStatus(err), draft, errors.Message(err))
}

// sourceOption is one entry of the add-ingredient select
type sourceOption struct {
	Value string
	Label string
}

func (s *WebServer) renderDraft(w http.ResponseWriter, r *http.Request, status int, draft *nutrition.Draft, errMsg string) {
	recipe := draft.Ledger.Recipe()

	var options []sourceOption
	for _, f := range draft.Catalog.Foods() {
		options = append(options, sourceOption{Value: fmt.Sprintf("food:%d", f.ID), Label: f.DisplayName()})
	}
	for _, rec := range draft.Catalog.Recipes() {
		if rec.ID == recipe.ID {
			continue
		}
		options = append(options, sourceOption{Value: fmt.Sprintf("recipe:%d", rec.ID), Label: "Recipe: " + rec.Name})
	}

	title := "New recipe - TrackEats"
	if !draft.IsNew() {
		title = "Edit " + recipe.Name + " - TrackEats"
	}
	s.render(w, r, status, "draft", map[string]interface{}{
		"Title":           title,
		"Draft":           draft,
		"Base":            draftURL(draft.ID),
		"Recipe":          recipe,
		"Lines":           draft.Ledger.Lines(),
		"Totals":          recipe.Nutrition.Fields(),
		"PerServing":      draft.Ledger.PerServing().Fields(),
		"PricePerServing": recipe.PricePerServing(),
		"Options":         options,
		"Error":           errMsg,
	})
}

func draftURL(draftID string) string {
	return "/drafts/" + draftID
}

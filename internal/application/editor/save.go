package editor

import (
	"context"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Save outcomes reported to metrics
const (
	saveOK      = "ok"
	savePartial = "partial"
	saveFailed  = "failed"
)

// Save writes the draft to the backend: the recipe header first (update
// or create), then the stored ingredient set is deleted and the draft's
// lines inserted in its place. The steps are not transactional. If a step
// after the header fails, the draft stays open with the recipe's ID so a
// second Save retries as an update. On success the draft is closed.
func (s *Service) Save(ctx context.Context, sessionID, draftID string, creds outbound.Credentials) (nutrition.Recipe, error) {
	ctx, span := s.tracer.Start(ctx, "editor.Save", trace.WithAttributes(attribute.String("draft.id", draftID)))
	defer span.End()

	draft, err := s.Draft(ctx, sessionID, draftID)
	if err != nil {
		return nutrition.Recipe{}, err
	}

	recipe := draft.Ledger.Recipe()
	if err := recipe.Validate(); err != nil {
		return nutrition.Recipe{}, errors.NewValidationError(err)
	}

	recipe, err = s.writeHeader(ctx, creds, recipe)
	if err != nil {
		s.metrics.RecordSave(saveFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "header write failed")
		return nutrition.Recipe{}, err
	}
	span.SetAttributes(attribute.Int("recipe.id", recipe.ID))

	if draft.IsNew() {
		// remember the new ID right away so a retry updates instead of
		// creating a second recipe
		if _, err := s.update(ctx, sessionID, draftID, func(d *nutrition.Draft) error {
			d.Ledger.SetRecipeID(recipe.ID)
			return nil
		}); err != nil {
			s.logger.Warn("Failed to record new recipe id on draft",
				zap.Int("recipe_id", recipe.ID),
				zap.Error(err),
			)
		}
	}

	draft.Ledger.SetRecipeID(recipe.ID)
	records := draft.Ledger.Records()

	if err := s.api.DeleteIngredients(ctx, creds, recipe.ID); err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nutrition.Recipe{}, s.partial(span, recipe.ID, "delete ingredients", err)
	}
	if err := s.api.AddIngredients(ctx, creds, recipe.ID, records); err != nil {
		return nutrition.Recipe{}, s.partial(span, recipe.ID, "insert ingredients", err)
	}

	if _, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.DeleteDraft(draftID)
		return nil
	}); err != nil {
		s.logger.Warn("Failed to close saved draft", zap.String("draft_id", draftID), zap.Error(err))
	}

	s.metrics.RecordSave(saveOK)
	s.logger.Info("Recipe saved",
		zap.Int("recipe_id", recipe.ID),
		zap.Int("ingredients", len(records)),
	)
	return recipe, nil
}

func (s *Service) writeHeader(ctx context.Context, creds outbound.Credentials, recipe nutrition.Recipe) (nutrition.Recipe, error) {
	if recipe.ID != 0 {
		return s.api.UpdateRecipe(ctx, creds, recipe)
	}

	created, err := s.api.CreateRecipe(ctx, creds, recipe)
	if err != nil {
		return nutrition.Recipe{}, err
	}
	if created.ID == 0 {
		return nutrition.Recipe{}, errors.NewAppError(errors.CodeExternalServiceError, "Recipe was not assigned an ID", "")
	}
	return created, nil
}

func (s *Service) partial(span trace.Span, recipeID int, phase string, cause error) error {
	s.metrics.RecordSave(savePartial)
	span.RecordError(cause)
	span.SetStatus(codes.Error, phase+" failed")

	// a rejected token is reported as such so the user is sent to log in
	if errors.Is(cause, errors.CodeUnauthorized) {
		return cause
	}

	s.logger.Error("Recipe saved without its ingredient list",
		zap.Int("recipe_id", recipeID),
		zap.String("phase", phase),
		zap.Error(cause),
	)
	return errors.NewPartialSaveError(recipeID, phase, cause)
}

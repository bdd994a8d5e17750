// Package editor provides the application layer for editing a recipe's
// ingredient list and saving it to the backend
package editor

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/domain/shared"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"github.com/lastcallsoftware/trackeats/internal/ports/inbound"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/lastcallsoftware/trackeats/internal/application/editor"

var errStaleLoad = stderrors.New("stale load")

// Metrics receives editor outcomes
type Metrics interface {
	RecordLedgerOperation(operation string, err error)
	RecordSave(result string)
	RecordStaleLoad()
}

type nopMetrics struct{}

func (nopMetrics) RecordLedgerOperation(string, error) {}
func (nopMetrics) RecordSave(string)                   {}
func (nopMetrics) RecordStaleLoad()                    {}

// Service implements the recipe editing use cases
type Service struct {
	api      outbound.BackendAPI
	sessions session.Store
	metrics  Metrics
	tracer   trace.Tracer
	events   *shared.Dispatcher
	logger   *zap.Logger
}

var _ inbound.EditorService = (*Service)(nil)

// NewService creates a new editor service. metrics may be nil.
func NewService(api outbound.BackendAPI, sessions session.Store, metrics Metrics, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	s := &Service{
		api:      api,
		sessions: sessions,
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
		events:   shared.NewDispatcher(),
		logger:   logger.Named("editor-service"),
	}
	s.events.Register(s.logLedgerEvent,
		nutrition.EventIngredientAdded,
		nutrition.EventIngredientUpdated,
		nutrition.EventIngredientRemoved,
		nutrition.EventIngredientMoved,
	)
	return s
}

func (s *Service) logLedgerEvent(event shared.DomainEvent) error {
	fields := []zap.Field{zap.String("event", event.EventName())}
	switch e := event.(type) {
	case nutrition.IngredientAddedEvent:
		fields = append(fields, zap.String("source", string(e.Ref.Kind)), zap.Int("source_id", e.Ref.SourceID), zap.Float64("servings", e.Servings))
	case nutrition.IngredientUpdatedEvent:
		fields = append(fields, zap.Int("source_id", e.Ref.SourceID), zap.Float64("from", e.OldServings), zap.Float64("to", e.NewServings))
	case nutrition.IngredientRemovedEvent:
		fields = append(fields, zap.Int("source_id", e.Ref.SourceID), zap.Float64("servings", e.Servings))
	case nutrition.IngredientMovedEvent:
		fields = append(fields, zap.Int("source_id", e.Ref.SourceID), zap.Int("from", e.From), zap.Int("to", e.To))
	}
	s.logger.Debug("Ledger event", fields...)
	return nil
}

type loaded struct {
	foods   []nutrition.Food
	recipes []nutrition.Recipe
	recipe  nutrition.Recipe
	records []nutrition.IngredientRecord
}

// Open loads the catalog, and for an existing recipe its header and
// ingredient records, then stores a new draft in the session. Each open
// starts a new load generation; if another open began while this one was
// loading, this result is dropped.
func (s *Service) Open(ctx context.Context, sessionID string, creds outbound.Credentials, recipeID int) (*nutrition.Draft, error) {
	ctx, span := s.tracer.Start(ctx, "editor.Open", trace.WithAttributes(attribute.Int("recipe.id", recipeID)))
	defer span.End()

	var generation uint64
	if _, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		generation = sess.BeginLoad()
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to start load: %w", err)
	}

	data, err := s.load(ctx, creds, recipeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}

	cat := nutrition.NewCatalog(data.foods, data.recipes)
	var ledger *nutrition.Ledger
	if recipeID == 0 {
		ledger = nutrition.NewLedger(nutrition.Recipe{})
	} else {
		ledger, err = nutrition.LoadLedger(data.recipe, cat, data.records)
		if err != nil {
			return nil, errors.NewAppError(errors.CodeExternalServiceError, "Stored ingredients are invalid", err.Error()).WithCause(err)
		}
	}
	draft := nutrition.NewDraft(ledger, cat)

	_, err = s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		if sess.Generation != generation {
			return errStaleLoad
		}
		sess.PutDraft(draft)
		return nil
	})
	if stderrors.Is(err, errStaleLoad) {
		s.metrics.RecordStaleLoad()
		s.logger.Info("Discarded stale recipe load",
			zap.Int("recipe_id", recipeID),
			zap.Uint64("generation", generation),
		)
		return nil, errors.NewAppError(errors.CodeConflict, "A newer load replaced this one", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store draft: %w", err)
	}

	s.logger.Debug("Draft opened",
		zap.String("draft_id", draft.ID),
		zap.Int("recipe_id", recipeID),
		zap.Int("lines", ledger.Len()),
	)
	return draft, nil
}

func (s *Service) load(ctx context.Context, creds outbound.Credentials, recipeID int) (*loaded, error) {
	var data loaded
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		foods, err := s.api.ListFoods(gctx, creds)
		data.foods = foods
		return err
	})
	g.Go(func() error {
		recipes, err := s.api.ListRecipes(gctx, creds)
		data.recipes = recipes
		return err
	})
	if recipeID != 0 {
		g.Go(func() error {
			recipe, err := s.api.GetRecipe(gctx, creds, recipeID)
			data.recipe = recipe
			return err
		})
		g.Go(func() error {
			records, err := s.api.ListIngredients(gctx, creds, recipeID)
			data.records = records
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Draft returns an open draft
func (s *Service) Draft(ctx context.Context, sessionID, draftID string) (*nutrition.Draft, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d, ok := sess.Draft(draftID)
	if !ok {
		return nil, errors.NewNotFoundError("Recipe draft")
	}
	return d, nil
}

// Apply performs one ledger edit on a draft
func (s *Service) Apply(ctx context.Context, sessionID, draftID string, op inbound.LedgerOperation) (*nutrition.Draft, error) {
	draft, err := s.update(ctx, sessionID, draftID, func(d *nutrition.Draft) error {
		var err error
		switch op.Kind {
		case inbound.OpAdd:
			_, err = d.AddLine(op.Source, op.SourceID, op.Servings)
		case inbound.OpUpdate:
			err = d.UpdateLine(op.LineID, op.Servings)
		case inbound.OpRemove:
			err = d.RemoveLine(op.LineID)
		case inbound.OpMoveUp:
			err = d.MoveLineUp(op.LineID)
		case inbound.OpMoveDown:
			err = d.MoveLineDown(op.LineID)
		default:
			return errors.NewAppError(errors.CodeBadRequest, "Unknown operation", string(op.Kind))
		}
		if err != nil {
			return errors.NewValidationError(err)
		}
		if err := s.events.DispatchAll(d.Ledger.Events()); err != nil {
			s.logger.Warn("Ledger event handler failed", zap.String("draft_id", d.ID), zap.Error(err))
		}
		return nil
	})
	s.metrics.RecordLedgerOperation(string(op.Kind), err)
	return draft, err
}

// SetHeader updates the recipe's descriptive fields
func (s *Service) SetHeader(ctx context.Context, sessionID, draftID string, header inbound.RecipeHeader) (*nutrition.Draft, error) {
	return s.update(ctx, sessionID, draftID, func(d *nutrition.Draft) error {
		if err := d.Ledger.SetHeader(header.Name, header.Cuisine, header.TotalYield, header.Servings); err != nil {
			return errors.NewValidationError(err)
		}
		return nil
	})
}

// Discard closes a draft without saving
func (s *Service) Discard(ctx context.Context, sessionID, draftID string) error {
	_, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.DeleteDraft(draftID)
		return nil
	})
	return err
}

func (s *Service) update(ctx context.Context, sessionID, draftID string, fn func(*nutrition.Draft) error) (*nutrition.Draft, error) {
	var draft *nutrition.Draft
	_, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		d, ok := sess.Draft(draftID)
		if !ok {
			return errors.NewNotFoundError("Recipe draft")
		}
		if err := fn(d); err != nil {
			return err
		}
		draft = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

package editor

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/auth"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"github.com/lastcallsoftware/trackeats/internal/ports/inbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
	"github.com/lastcallsoftware/trackeats/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingMetrics struct {
	saves  []string
	stale  int
	failed int
}

func (m *countingMetrics) RecordLedgerOperation(_ string, err error) {
	if err != nil {
		m.failed++
	}
}
func (m *countingMetrics) RecordSave(result string) { m.saves = append(m.saves, result) }
func (m *countingMetrics) RecordStaleLoad()         { m.stale++ }

type EditorServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	api      *testutils.MockBackendAPI
	store    *session.MemoryStore
	metrics  *countingMetrics
	service  *Service
	creds    *auth.Context
	sess     *session.Session
	oats     nutrition.Food
	milk     nutrition.Food
	chili    nutrition.Recipe
	foods    []nutrition.Food
	recipes  []nutrition.Recipe
}

func (s *EditorServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.api = testutils.NewMockBackendAPI()
	s.store = session.NewMemoryStore(zap.NewNop())
	s.metrics = &countingMetrics{}
	s.service = NewService(s.api, s.store, s.metrics, zap.NewNop())
	s.creds = auth.NewContext("token")

	s.sess = session.New(time.Hour)
	s.Require().NoError(s.store.Save(s.ctx, s.sess))

	s.oats = testutils.NewFoodBuilderWithSeed(1).WithID(1).WithName("Oats", "rolled").WithServings(10).Build()
	s.milk = testutils.NewFoodBuilderWithSeed(2).WithID(2).WithName("Milk", "").WithServings(8).Build()
	s.chili = testutils.NewRecipeBuilderWithSeed(3).WithID(30).WithName("Chili").WithServings(6).Build()
	s.foods = []nutrition.Food{s.oats, s.milk}
	s.recipes = []nutrition.Recipe{s.chili}
}

func (s *EditorServiceTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *EditorServiceTestSuite) expectCatalog() {
	s.api.On("ListFoods", mock.Anything, s.creds).Return(s.foods, nil)
	s.api.On("ListRecipes", mock.Anything, s.creds).Return(s.recipes, nil)
}

func (s *EditorServiceTestSuite) openNew() *nutrition.Draft {
	s.expectCatalog()
	d, err := s.service.Open(s.ctx, s.sess.ID, s.creds, 0)
	s.Require().NoError(err)
	return d
}

func (s *EditorServiceTestSuite) TestOpenNew() {
	d := s.openNew()

	s.True(d.IsNew())
	s.Zero(d.Ledger.Len())
	_, ok := d.Catalog.Recipe(30)
	s.True(ok)

	stored, err := s.service.Draft(s.ctx, s.sess.ID, d.ID)
	s.Require().NoError(err)
	s.Equal(d.ID, stored.ID)
}

func (s *EditorServiceTestSuite) TestOpenExisting() {
	stew := testutils.NewRecipeBuilderWithSeed(4).WithID(40).WithName("Stew").WithServings(4).Build()
	oatsID, chiliID := 1, 30
	s.expectCatalog()
	s.api.On("GetRecipe", mock.Anything, s.creds, 40).Return(stew, nil)
	s.api.On("ListIngredients", mock.Anything, s.creds, 40).Return([]nutrition.IngredientRecord{
		{RecipeID: 40, RecipeIngredientID: &chiliID, Ordinal: 1, Servings: 1},
		{RecipeID: 40, FoodIngredientID: &oatsID, Ordinal: 0, Servings: 2},
	}, nil)

	d, err := s.service.Open(s.ctx, s.sess.ID, s.creds, 40)
	s.Require().NoError(err)

	s.False(d.IsNew())
	s.Equal(stew, d.Ledger.Recipe())
	lines := d.Ledger.Lines()
	s.Require().Len(lines, 2)
	s.Equal(nutrition.LineRef{Kind: nutrition.SourceFood, SourceID: 1}, lines[0].Ref())
	s.Equal(nutrition.LineRef{Kind: nutrition.SourceRecipe, SourceID: 30}, lines[1].Ref())
}

func (s *EditorServiceTestSuite) TestOpenFailsWhenALoadFails() {
	s.api.On("ListFoods", mock.Anything, s.creds).Return(nil, errors.NewUnauthorizedError(""))
	s.api.On("ListRecipes", mock.Anything, s.creds).Return(s.recipes, nil).Maybe()

	_, err := s.service.Open(s.ctx, s.sess.ID, s.creds, 0)

	s.True(errors.Is(err, errors.CodeUnauthorized))
	sess, _ := s.store.Load(s.ctx, s.sess.ID)
	s.Empty(sess.Drafts)
}

func (s *EditorServiceTestSuite) TestStaleLoadIsDiscarded() {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	s.api.On("ListFoods", mock.Anything, s.creds).Return(s.foods, nil).Run(func(mock.Arguments) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
	})
	s.api.On("ListRecipes", mock.Anything, s.creds).Return(s.recipes, nil)

	type result struct {
		draft *nutrition.Draft
		err   error
	}
	first := make(chan result, 1)
	go func() {
		d, err := s.service.Open(s.ctx, s.sess.ID, s.creds, 0)
		first <- result{d, err}
	}()

	<-started
	newer, err := s.service.Open(s.ctx, s.sess.ID, s.creds, 0)
	s.Require().NoError(err)
	close(release)

	older := <-first
	s.Nil(older.draft)
	s.True(errors.Is(older.err, errors.CodeConflict))
	s.Equal(1, s.metrics.stale)

	sess, err := s.store.Load(s.ctx, s.sess.ID)
	s.Require().NoError(err)
	s.Len(sess.Drafts, 1)
	_, ok := sess.Draft(newer.ID)
	s.True(ok)
}

func (s *EditorServiceTestSuite) TestApply() {
	d := s.openNew()

	d, err := s.service.Apply(s.ctx, s.sess.ID, d.ID, inbound.LedgerOperation{
		Kind: inbound.OpAdd, Source: nutrition.SourceFood, SourceID: 1, Servings: 2,
	})
	s.Require().NoError(err)
	s.Require().Equal(1, d.Ledger.Len())
	lineID := d.Ledger.Lines()[0].ID

	d, err = s.service.Apply(s.ctx, s.sess.ID, d.ID, inbound.LedgerOperation{Kind: inbound.OpUpdate, LineID: lineID, Servings: 3})
	s.Require().NoError(err)
	s.InDelta(s.oats.Nutrition.Calories*3, d.Ledger.Recipe().Nutrition.Calories, 1e-9)

	stored, err := s.service.Draft(s.ctx, s.sess.ID, d.ID)
	s.Require().NoError(err)
	s.Equal(3.0, stored.Ledger.Lines()[0].Servings)
	testutils.AssertLedgerConsistent(s.T(), stored.Catalog, stored.Ledger)

	_, err = s.service.Apply(s.ctx, s.sess.ID, d.ID, inbound.LedgerOperation{Kind: inbound.OpRemove, LineID: lineID})
	s.Require().NoError(err)
}

func (s *EditorServiceTestSuite) TestApplyLogsLedgerEvents() {
	core, logs := observer.New(zapcore.DebugLevel)
	s.service = NewService(s.api, s.store, s.metrics, zap.New(core))
	d := s.openNew()

	d, err := s.service.Apply(s.ctx, s.sess.ID, d.ID, inbound.LedgerOperation{
		Kind: inbound.OpAdd, Source: nutrition.SourceFood, SourceID: 2, Servings: 1.5,
	})
	s.Require().NoError(err)
	_, err = s.service.Apply(s.ctx, s.sess.ID, d.ID, inbound.LedgerOperation{Kind: inbound.OpRemove, LineID: d.Ledger.Lines()[0].ID})
	s.Require().NoError(err)

	events := logs.FilterMessage("Ledger event").All()
	s.Require().Len(events, 2)
	s.Equal(nutrition.EventIngredientAdded, events[0].ContextMap()["event"])
	s.Equal(1.5, events[0].ContextMap()["servings"])
	s.Equal(nutrition.EventIngredientRemoved, events[1].ContextMap()["event"])
}

func (s *EditorServiceTestSuite) TestApplyValidationLeavesDraftUnchanged() {
	d := s.openNew()

	_, err := s.service.Apply(s.ctx, s.sess.ID, d.ID, inbound.LedgerOperation{
		Kind: inbound.OpAdd, Source: nutrition.SourceFood, SourceID: 1, Servings: 0,
	})
	s.True(errors.Is(err, errors.CodeValidationFailed))
	s.ErrorIs(err, nutrition.ErrInvalidServings)
	s.Equal(1, s.metrics.failed)

	stored, err := s.service.Draft(s.ctx, s.sess.ID, d.ID)
	s.Require().NoError(err)
	s.Zero(stored.Ledger.Len())

	_, err = s.service.Apply(s.ctx, s.sess.ID, "missing", inbound.LedgerOperation{Kind: inbound.OpMoveUp})
	s.True(errors.Is(err, errors.CodeNotFound))

	_, err = s.service.Apply(s.ctx, s.sess.ID, d.ID, inbound.LedgerOperation{Kind: "shuffle"})
	s.True(errors.Is(err, errors.CodeBadRequest))
}

func (s *EditorServiceTestSuite) TestSetHeader() {
	d := s.openNew()

	d, err := s.service.SetHeader(s.ctx, s.sess.ID, d.ID, inbound.RecipeHeader{Name: "Porridge", Servings: 2})
	s.Require().NoError(err)
	s.Equal("Porridge", d.Ledger.Recipe().Name)

	_, err = s.service.SetHeader(s.ctx, s.sess.ID, d.ID, inbound.RecipeHeader{Name: "Porridge", Servings: -1})
	s.True(errors.Is(err, errors.CodeValidationFailed))
}

// prepareNewDraft opens a new draft named Porridge with oats and chili
func (s *EditorServiceTestSuite) prepareNewDraft() *nutrition.Draft {
	d := s.openNew()
	_, err := s.service.SetHeader(s.ctx, s.sess.ID, d.ID, inbound.RecipeHeader{Name: "Porridge", Servings: 2})
	s.Require().NoError(err)
	_, err = s.service.Apply(s.ctx, s.sess.ID, d.ID, inbound.LedgerOperation{Kind: inbound.OpAdd, Source: nutrition.SourceFood, SourceID: 1, Servings: 2})
	s.Require().NoError(err)
	d, err = s.service.Apply(s.ctx, s.sess.ID, d.ID, inbound.LedgerOperation{Kind: inbound.OpAdd, Source: nutrition.SourceRecipe, SourceID: 30, Servings: 1})
	s.Require().NoError(err)
	return d
}

func recordsFor(recipeID int) interface{} {
	return mock.MatchedBy(func(records []nutrition.IngredientRecord) bool {
		if len(records) != 2 {
			return false
		}
		for i, r := range records {
			if r.RecipeID != recipeID || r.Ordinal != i {
				return false
			}
		}
		return records[0].FoodIngredientID != nil && *records[0].FoodIngredientID == 1 &&
			records[1].RecipeIngredientID != nil && *records[1].RecipeIngredientID == 30
	})
}

func (s *EditorServiceTestSuite) TestSaveCreatesThenReplacesIngredients() {
	d := s.prepareNewDraft()
	header := d.Ledger.Recipe()
	created := header
	created.ID = 42

	var order []string
	s.api.On("CreateRecipe", mock.Anything, s.creds, header).Return(created, nil).
		Run(func(mock.Arguments) { order = append(order, "create") })
	s.api.On("DeleteIngredients", mock.Anything, s.creds, 42).Return(nil).
		Run(func(mock.Arguments) { order = append(order, "delete") })
	s.api.On("AddIngredients", mock.Anything, s.creds, 42, recordsFor(42)).Return(nil).
		Run(func(mock.Arguments) { order = append(order, "insert") })

	saved, err := s.service.Save(s.ctx, s.sess.ID, d.ID, s.creds)

	s.Require().NoError(err)
	s.Equal(42, saved.ID)
	s.Equal([]string{"create", "delete", "insert"}, order)
	s.Equal([]string{saveOK}, s.metrics.saves)

	_, err = s.service.Draft(s.ctx, s.sess.ID, d.ID)
	s.True(errors.Is(err, errors.CodeNotFound))
}

func (s *EditorServiceTestSuite) TestSaveUpdatesExistingRecipe() {
	d := s.prepareNewDraft()
	_, err := s.service.update(s.ctx, s.sess.ID, d.ID, func(d *nutrition.Draft) error {
		d.Ledger.SetRecipeID(7)
		return nil
	})
	s.Require().NoError(err)
	header := d.Ledger.Recipe()
	header.ID = 7

	s.api.On("UpdateRecipe", mock.Anything, s.creds, header).Return(header, nil)
	s.api.On("DeleteIngredients", mock.Anything, s.creds, 7).Return(nil)
	s.api.On("AddIngredients", mock.Anything, s.creds, 7, recordsFor(7)).Return(nil)

	saved, err := s.service.Save(s.ctx, s.sess.ID, d.ID, s.creds)

	s.Require().NoError(err)
	s.Equal(7, saved.ID)
}

func (s *EditorServiceTestSuite) TestSavePartialFailureKeepsRecipeID() {
	d := s.prepareNewDraft()
	header := d.Ledger.Recipe()
	created := header
	created.ID = 42
	insertErr := errors.FromStatus(500, "insert failed")

	s.api.On("CreateRecipe", mock.Anything, s.creds, header).Return(created, nil).Once()
	s.api.On("DeleteIngredients", mock.Anything, s.creds, 42).Return(nil)
	s.api.On("AddIngredients", mock.Anything, s.creds, 42, recordsFor(42)).Return(insertErr).Once()

	_, err := s.service.Save(s.ctx, s.sess.ID, d.ID, s.creds)

	s.True(errors.Is(err, errors.CodePartialSave))
	s.ErrorIs(err, insertErr)
	s.Equal([]string{savePartial}, s.metrics.saves)

	stored, err := s.service.Draft(s.ctx, s.sess.ID, d.ID)
	s.Require().NoError(err)
	s.Equal(42, stored.Ledger.Recipe().ID)
	s.Equal(2, stored.Ledger.Len())

	// retry goes down the update path
	updated := stored.Ledger.Recipe()
	s.api.On("UpdateRecipe", mock.Anything, s.creds, updated).Return(updated, nil).Once()
	s.api.On("AddIngredients", mock.Anything, s.creds, 42, recordsFor(42)).Return(nil).Once()

	_, err = s.service.Save(s.ctx, s.sess.ID, d.ID, s.creds)
	s.Require().NoError(err)
	s.api.AssertNumberOfCalls(s.T(), "CreateRecipe", 1)
}

func (s *EditorServiceTestSuite) TestSaveDeleteFailureSkipsInsert() {
	d := s.prepareNewDraft()
	created := d.Ledger.Recipe()
	created.ID = 42

	s.api.On("CreateRecipe", mock.Anything, s.creds, mock.Anything).Return(created, nil)
	s.api.On("DeleteIngredients", mock.Anything, s.creds, 42).Return(errors.FromStatus(500, ""))

	_, err := s.service.Save(s.ctx, s.sess.ID, d.ID, s.creds)

	s.True(errors.Is(err, errors.CodePartialSave))
	var appErr *errors.AppError
	s.Require().True(stderrors.As(err, &appErr))
	s.Equal("delete ingredients", appErr.Metadata["phase"])
	s.api.AssertNotCalled(s.T(), "AddIngredients", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *EditorServiceTestSuite) TestSaveRejectsInvalidHeader() {
	d := s.openNew()

	_, err := s.service.Save(s.ctx, s.sess.ID, d.ID, s.creds)

	s.True(errors.Is(err, errors.CodeValidationFailed))
	s.api.AssertNotCalled(s.T(), "CreateRecipe", mock.Anything, mock.Anything, mock.Anything)
}

func (s *EditorServiceTestSuite) TestSaveHeaderFailureWritesNothing() {
	d := s.prepareNewDraft()
	s.api.On("CreateRecipe", mock.Anything, s.creds, mock.Anything).Return(nil, errors.FromStatus(400, "name taken"))

	_, err := s.service.Save(s.ctx, s.sess.ID, d.ID, s.creds)

	s.True(errors.Is(err, errors.CodeBadRequest))
	s.Equal([]string{saveFailed}, s.metrics.saves)
	stored, err := s.service.Draft(s.ctx, s.sess.ID, d.ID)
	s.Require().NoError(err)
	s.True(stored.IsNew())
}

func (s *EditorServiceTestSuite) TestDiscard() {
	d := s.openNew()

	s.Require().NoError(s.service.Discard(s.ctx, s.sess.ID, d.ID))

	_, err := s.service.Draft(s.ctx, s.sess.ID, d.ID)
	s.True(errors.Is(err, errors.CodeNotFound))
}

func TestEditorServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EditorServiceTestSuite))
}

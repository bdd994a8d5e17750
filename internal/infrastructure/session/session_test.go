package session

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// StoreTestSuite runs the same contract against every Store implementation
type StoreTestSuite struct {
	suite.Suite
	store Store
	ctx   context.Context
}

func newDraft() *nutrition.Draft {
	cat := nutrition.NewCatalog([]nutrition.Food{{ID: 1, Name: "Oats", Servings: 10, Price: 5}}, nil)
	d := nutrition.NewDraft(nutrition.NewLedger(nutrition.Recipe{Name: "Porridge", Servings: 2}), cat)
	if _, err := d.AddLine(nutrition.SourceFood, 1, 2); err != nil {
		panic(err)
	}
	return d
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TestRoundTrip() {
	sess := New(time.Hour)
	sess.LogIn("alice", "token")
	d := newDraft()
	sess.PutDraft(d)
	s.Require().NoError(s.store.Save(s.ctx, sess))

	loaded, err := s.store.Load(s.ctx, sess.ID)
	s.Require().NoError(err)

	s.Equal("alice", loaded.Username)
	s.Equal("token", loaded.AccessToken)
	got, ok := loaded.Draft(d.ID)
	s.Require().True(ok)
	s.Equal(d.Ledger.Lines(), got.Ledger.Lines())
	s.Equal(d.Ledger.Recipe(), got.Ledger.Recipe())
}

func (s *StoreTestSuite) TestLoadReturnsCopy() {
	sess := New(time.Hour)
	s.Require().NoError(s.store.Save(s.ctx, sess))

	loaded, err := s.store.Load(s.ctx, sess.ID)
	s.Require().NoError(err)
	loaded.Flash = "not saved"

	again, err := s.store.Load(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Empty(again.Flash)
}

func (s *StoreTestSuite) TestUpdate() {
	sess := New(time.Hour)
	s.Require().NoError(s.store.Save(s.ctx, sess))

	updated, err := s.store.Update(s.ctx, sess.ID, func(cur *Session) error {
		cur.Flash = "saved"
		return nil
	})
	s.Require().NoError(err)
	s.Equal("saved", updated.Flash)

	boom := errors.New("boom")
	_, err = s.store.Update(s.ctx, sess.ID, func(cur *Session) error {
		cur.Flash = "discarded"
		return boom
	})
	s.ErrorIs(err, boom)

	loaded, err := s.store.Load(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal("saved", loaded.Flash)
}

func (s *StoreTestSuite) TestConcurrentUpdatesAreSerialized() {
	sess := New(time.Hour)
	s.Require().NoError(s.store.Save(s.ctx, sess))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, err := s.store.Update(s.ctx, sess.ID, func(cur *Session) error {
					cur.BeginLoad()
					return nil
				})
				if !errors.Is(err, ErrConflict) {
					s.NoError(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	loaded, err := s.store.Load(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(uint64(20), loaded.Generation)
}

func (s *StoreTestSuite) TestMissingAndDeleted() {
	_, err := s.store.Load(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.store.Update(s.ctx, "nope", func(*Session) error { return nil })
	s.ErrorIs(err, ErrNotFound)

	sess := New(time.Hour)
	s.Require().NoError(s.store.Save(s.ctx, sess))
	s.Require().NoError(s.store.Delete(s.ctx, sess.ID))
	_, err = s.store.Load(s.ctx, sess.ID)
	s.ErrorIs(err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{store: NewMemoryStore(zap.NewNop())})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TRACKEATS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRACKEATS_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, "trackeats:test:"+t.Name()+":", zap.NewNop())
	require.NoError(t, store.Ping(context.Background()))

	suite.Run(t, &StoreTestSuite{store: store})
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	now := time.Now()
	store.now = func() time.Time { return now }

	sess := New(time.Minute)
	require.NoError(t, store.Save(context.Background(), sess))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := store.Load(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	store.cleanupExpired()
	assert.Zero(t, store.Len())
}

func TestMemoryStore_CleanupStops(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	store.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestSession_Behaviour(t *testing.T) {
	sess := New(time.Hour)
	sess.LogIn("alice", "t1")
	sess.PutDraft(newDraft())

	sess.InvalidateToken("Your session has expired")
	assert.Empty(t, sess.AccessToken)
	assert.Len(t, sess.Drafts, 1)
	assert.Equal(t, "Your session has expired", sess.TakeFlash())
	assert.Empty(t, sess.TakeFlash())

	sess.LogIn("alice", "t2")
	assert.Len(t, sess.Drafts, 1)

	sess.LogIn("bob", "t3")
	assert.Empty(t, sess.Drafts)

	sess.PutDraft(newDraft())
	sess.LogOut()
	assert.Empty(t, sess.Drafts)
	assert.Empty(t, sess.Username)

	assert.Equal(t, uint64(1), sess.BeginLoad())
	assert.Equal(t, uint64(2), sess.BeginLoad())
	assert.True(t, sess.Expired(sess.ExpiresAt))
}

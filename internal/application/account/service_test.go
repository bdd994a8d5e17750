package account

import (
	"context"
	"testing"
	"time"

	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
	"github.com/lastcallsoftware/trackeats/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type AccountServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	api     *testutils.MockBackendAPI
	store   *session.MemoryStore
	service *Service
	sess    *session.Session
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.api = testutils.NewMockBackendAPI()
	s.store = session.NewMemoryStore(zap.NewNop())
	s.service = NewService(s.api, s.store, nil, zap.NewNop())
	s.sess = session.New(time.Hour)
	s.Require().NoError(s.store.Save(s.ctx, s.sess))
}

func (s *AccountServiceTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) load() *session.Session {
	sess, err := s.store.Load(s.ctx, s.sess.ID)
	s.Require().NoError(err)
	return sess
}

func (s *AccountServiceTestSuite) TestLoginStoresToken() {
	s.api.On("Login", s.ctx, "alice", "secret").Return("tok", nil)

	s.Require().NoError(s.service.Login(s.ctx, s.sess.ID, " alice ", "secret"))

	sess := s.load()
	s.Equal("alice", sess.Username)
	s.Equal("tok", sess.AccessToken)
}

func (s *AccountServiceTestSuite) TestLoginRejected() {
	s.api.On("Login", s.ctx, "alice", "wrong").Return("", errors.FromStatus(401, "Bad username or password"))

	err := s.service.Login(s.ctx, s.sess.ID, "alice", "wrong")

	s.Equal("Bad username or password", errors.Message(err))
	s.Empty(s.load().AccessToken)
}

func (s *AccountServiceTestSuite) TestLoginRequiresCredentials() {
	err := s.service.Login(s.ctx, s.sess.ID, "  ", "secret")
	s.True(errors.Is(err, errors.CodeValidationFailed))
}

func (s *AccountServiceTestSuite) TestRegister() {
	req := outbound.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "longenough"}
	s.api.On("Register", s.ctx, req).Return(nil)

	s.Require().NoError(s.service.Register(s.ctx, s.sess.ID, req))
	s.Equal("alice", s.load().PendingUsername)
}

func (s *AccountServiceTestSuite) TestRegisterValidation() {
	err := s.service.Register(s.ctx, s.sess.ID, outbound.RegisterRequest{Username: "al", Email: "nope", Password: "short"})

	s.True(errors.Is(err, errors.CodeValidationFailed))
	msg := errors.Message(err)
	s.Contains(msg, "Username must be at least 3 characters")
	s.Contains(msg, "Email must be a valid email")
	s.Contains(msg, "Password must be at least 8 characters")
	s.api.AssertNotCalled(s.T(), "Register", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestConfirmationStatus() {
	_, err := s.service.ConfirmationStatus(s.ctx, s.sess.ID)
	s.True(errors.Is(err, errors.CodeNotFound))

	_, err = s.store.Update(s.ctx, s.sess.ID, func(sess *session.Session) error {
		sess.PendingUsername = "alice"
		return nil
	})
	s.Require().NoError(err)
	s.api.On("IsConfirmed", s.ctx, "alice").Return(true, nil)

	status, err := s.service.ConfirmationStatus(s.ctx, s.sess.ID)
	s.Require().NoError(err)
	s.True(status.Confirmed)
	s.Equal("alice", status.Username)
}

func (s *AccountServiceTestSuite) TestAwaitConfirmationPollsThroughTransientErrors() {
	s.api.On("IsConfirmed", mock.Anything, "alice").Return(false, nil).Once()
	s.api.On("IsConfirmed", mock.Anything, "alice").Return(false, errors.FromStatus(503, "")).Once()
	s.api.On("IsConfirmed", mock.Anything, "alice").Return(true, nil).Once()

	err := s.service.AwaitConfirmation(s.ctx, "alice", time.Millisecond)

	s.NoError(err)
	s.api.AssertNumberOfCalls(s.T(), "IsConfirmed", 3)
}

func (s *AccountServiceTestSuite) TestAwaitConfirmationStopsOnPermanentError() {
	s.api.On("IsConfirmed", mock.Anything, "ghost").Return(false, errors.FromStatus(404, "no such user")).Once()

	err := s.service.AwaitConfirmation(s.ctx, "ghost", time.Millisecond)

	s.True(errors.Is(err, errors.CodeNotFound))
}

func (s *AccountServiceTestSuite) TestAwaitConfirmationHonoursContext() {
	s.api.On("IsConfirmed", mock.Anything, "alice").Return(false, nil)
	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()

	err := s.service.AwaitConfirmation(ctx, "alice", 5*time.Millisecond)

	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *AccountServiceTestSuite) TestLogout() {
	s.api.On("Login", s.ctx, "alice", "secret").Return("tok", nil)
	s.Require().NoError(s.service.Login(s.ctx, s.sess.ID, "alice", "secret"))

	s.Require().NoError(s.service.Logout(s.ctx, s.sess.ID))
	s.Empty(s.load().AccessToken)

	s.NoError(s.service.Logout(s.ctx, "unknown-session"))
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

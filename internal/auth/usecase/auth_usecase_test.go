package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"helfy-server/internal/auth/config"
	"helfy-server/internal/auth/domain/model"
	"helfy-server/internal/auth/usecase"
	apperrors "helfy-server/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// Mock credential store
type mockCredentialStore struct {
	mock.Mock
}

func (m *mockCredentialStore) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockCredentialStore) GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockCredentialStore) UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error {
	args := m.Called(ctx, userID, newHash)
	return args.Error(0)
}

func (m *mockCredentialStore) CreateToken(ctx context.Context, token *model.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockCredentialStore) GetValidToken(ctx context.Context, value string) (*model.User, *model.Token, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(*model.Token), args.Error(2)
}

func (m *mockCredentialStore) DeleteToken(ctx context.Context, value string) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

// Mock token service
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Issue(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) Validate(ctx context.Context, value string) (*model.User, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockTokenService) Revoke(ctx context.Context, value string) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

// Recording activity stub
type activityRecord struct {
	userID int64
	action model.Action
	ip     string
}

type stubActivity struct {
	records []activityRecord
}

func (s *stubActivity) Record(userID int64, action model.Action, clientIP string) {
	s.records = append(s.records, activityRecord{userID, action, clientIP})
}

type AuthUsecaseTestSuite struct {
	suite.Suite
	mockStore *mockCredentialStore
	mockToken *mockTokenService
	activity  *stubActivity
	usecase   *usecase.AuthUsecase
	ctx       context.Context
}

func (s *AuthUsecaseTestSuite) SetupTest() {
	s.mockStore = &mockCredentialStore{}
	s.mockToken = &mockTokenService{}
	s.activity = &stubActivity{}
	s.ctx = context.Background()

	cfg := &config.Config{
		BcryptCost:    bcrypt.MinCost,
		AdminEmail:    "admin@helfy.local",
		AdminUsername: "admin",
		AdminPassword: "admin123",
	}
	s.usecase = usecase.NewAuthUsecase(s.mockStore, s.mockToken, s.activity, cfg)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func (s *AuthUsecaseTestSuite) TestRegisterSuccess() {
	s.mockStore.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		// Never the plaintext password, always a bcrypt hash.
		return u.Email == "a@x.com" && u.Username == "a" &&
			u.PasswordHash != "secret1" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 7
	}).Return(nil)
	s.mockToken.On("Issue", mock.Anything, int64(7)).Return("tok-1", nil)

	user, token, err := s.usecase.Register(s.ctx, usecase.RegisterRequest{
		Email:    "A@X.com",
		Username: "a",
		Password: "secret1",
		ClientIP: "10.0.0.1",
	})

	s.Require().NoError(err)
	s.Equal("tok-1", token)
	s.Equal(int64(7), user.ID)
	s.Equal("a@x.com", user.Email)
	s.Empty(user.PasswordHash)

	s.Require().Len(s.activity.records, 1)
	s.Equal(model.ActionRegister, s.activity.records[0].action)
	s.Equal("10.0.0.1", s.activity.records[0].ip)
}

func (s *AuthUsecaseTestSuite) TestRegisterShortPasswordNeverReachesStore() {
	_, _, err := s.usecase.Register(s.ctx, usecase.RegisterRequest{
		Email:    "a@x.com",
		Username: "a",
		Password: "short",
	})

	s.ErrorIs(err, apperrors.ErrWeakPassword)
	s.mockStore.AssertNotCalled(s.T(), "CreateUser", mock.Anything, mock.Anything)
	s.Empty(s.activity.records)
}

func (s *AuthUsecaseTestSuite) TestRegisterMissingFields() {
	_, _, err := s.usecase.Register(s.ctx, usecase.RegisterRequest{
		Email:    "a@x.com",
		Password: "secret1",
	})

	s.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (s *AuthUsecaseTestSuite) TestRegisterDuplicateIsConflict() {
	s.mockStore.On("CreateUser", mock.Anything, mock.Anything).Return(apperrors.ErrIdentifierTaken)

	_, _, err := s.usecase.Register(s.ctx, usecase.RegisterRequest{
		Email:    "a@x.com",
		Username: "a",
		Password: "secret1",
	})

	s.ErrorIs(err, apperrors.ErrIdentifierTaken)
	s.mockToken.AssertNotCalled(s.T(), "Issue", mock.Anything, mock.Anything)
}

func (s *AuthUsecaseTestSuite) TestLoginSuccess() {
	stored := &model.User{
		ID:           3,
		Email:        "a@x.com",
		Username:     "a",
		PasswordHash: hashOf(s.T(), "secret1"),
	}
	s.mockStore.On("GetUserByIdentifier", mock.Anything, "a@x.com").Return(stored, nil)
	s.mockToken.On("Issue", mock.Anything, int64(3)).Return("tok-2", nil)

	user, token, err := s.usecase.Login(s.ctx, usecase.LoginRequest{
		Identifier: "a@x.com",
		Password:   "secret1",
		ClientIP:   "10.0.0.2",
	})

	s.Require().NoError(err)
	s.Equal("tok-2", token)
	s.Equal(int64(3), user.ID)
	s.Empty(user.PasswordHash)

	s.Require().Len(s.activity.records, 1)
	s.Equal(model.ActionLogin, s.activity.records[0].action)
}

func (s *AuthUsecaseTestSuite) TestLoginWrongPasswordAndUnknownUserAreIndistinguishable() {
	stored := &model.User{ID: 3, PasswordHash: hashOf(s.T(), "secret1")}
	s.mockStore.On("GetUserByIdentifier", mock.Anything, "known").Return(stored, nil)
	s.mockStore.On("GetUserByIdentifier", mock.Anything, "unknown").Return(nil, apperrors.ErrUserNotFound)

	_, _, errWrongPassword := s.usecase.Login(s.ctx, usecase.LoginRequest{
		Identifier: "known", Password: "wrong-pass",
	})
	_, _, errUnknownUser := s.usecase.Login(s.ctx, usecase.LoginRequest{
		Identifier: "unknown", Password: "whatever",
	})

	s.ErrorIs(errWrongPassword, apperrors.ErrInvalidCredentials)
	s.ErrorIs(errUnknownUser, apperrors.ErrInvalidCredentials)
	s.Equal(errWrongPassword.Error(), errUnknownUser.Error())
	s.Empty(s.activity.records)
}

func (s *AuthUsecaseTestSuite) TestLoginEmailIdentifierIsCaseInsensitive() {
	stored := &model.User{ID: 6, Email: "alice@example.com", PasswordHash: hashOf(s.T(), "secret1")}
	// Registration stored the lowercased email; login must fold the same way.
	s.mockStore.On("GetUserByIdentifier", mock.Anything, "alice@example.com").Return(stored, nil)
	s.mockToken.On("Issue", mock.Anything, int64(6)).Return("tok", nil)

	_, _, err := s.usecase.Login(s.ctx, usecase.LoginRequest{
		Identifier: "Alice@Example.com",
		Password:   "secret1",
	})

	s.Require().NoError(err)
	s.mockStore.AssertCalled(s.T(), "GetUserByIdentifier", mock.Anything, "alice@example.com")
}

func (s *AuthUsecaseTestSuite) TestLoginUsernameIdentifierKeepsCase() {
	stored := &model.User{ID: 6, Username: "MixedName", PasswordHash: hashOf(s.T(), "secret1")}
	s.mockStore.On("GetUserByIdentifier", mock.Anything, "MixedName").Return(stored, nil)
	s.mockToken.On("Issue", mock.Anything, int64(6)).Return("tok", nil)

	_, _, err := s.usecase.Login(s.ctx, usecase.LoginRequest{
		Identifier: "MixedName",
		Password:   "secret1",
	})

	s.Require().NoError(err)
}

func (s *AuthUsecaseTestSuite) TestLoginMissingFields() {
	_, _, err := s.usecase.Login(s.ctx, usecase.LoginRequest{Identifier: "a@x.com"})
	s.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (s *AuthUsecaseTestSuite) TestLogoutRevokesToken() {
	user := &model.User{ID: 5}
	s.mockToken.On("Validate", mock.Anything, "tok-3").Return(user, nil)
	s.mockToken.On("Revoke", mock.Anything, "tok-3").Return(nil)

	err := s.usecase.Logout(s.ctx, "tok-3", "10.0.0.3")

	s.Require().NoError(err)
	s.mockToken.AssertCalled(s.T(), "Revoke", mock.Anything, "tok-3")
	s.Require().Len(s.activity.records, 1)
	s.Equal(model.ActionLogout, s.activity.records[0].action)
}

func (s *AuthUsecaseTestSuite) TestLogoutWithRevokedTokenFails() {
	s.mockToken.On("Validate", mock.Anything, "gone").Return(nil, apperrors.ErrInvalidToken)

	err := s.usecase.Logout(s.ctx, "gone", "")

	s.ErrorIs(err, apperrors.ErrInvalidToken)
	s.mockToken.AssertNotCalled(s.T(), "Revoke", mock.Anything, mock.Anything)
}

func (s *AuthUsecaseTestSuite) TestCurrentUserStoreFailureIsInternalNotUnauthorized() {
	s.mockToken.On("Validate", mock.Anything, "tok").
		Return(nil, errors.New("pq: connection refused"))

	_, err := s.usecase.CurrentUser(s.ctx, "tok")

	s.Require().Error(err)
	s.NotErrorIs(err, apperrors.ErrInvalidToken)
	s.Equal(http.StatusInternalServerError, apperrors.HTTPStatus(err))
}

func (s *AuthUsecaseTestSuite) TestLogoutStoreFailureIsInternalNotUnauthorized() {
	s.mockToken.On("Validate", mock.Anything, "tok").
		Return(nil, errors.New("pq: connection refused"))

	err := s.usecase.Logout(s.ctx, "tok", "")

	s.Require().Error(err)
	s.NotErrorIs(err, apperrors.ErrInvalidToken)
	s.Equal(http.StatusInternalServerError, apperrors.HTTPStatus(err))
	s.mockToken.AssertNotCalled(s.T(), "Revoke", mock.Anything, mock.Anything)
}

func (s *AuthUsecaseTestSuite) TestCurrentUserStripsHash() {
	s.mockToken.On("Validate", mock.Anything, "tok-4").Return(&model.User{
		ID: 9, Email: "a@x.com", Username: "a", PasswordHash: "hash",
	}, nil)

	user, err := s.usecase.CurrentUser(s.ctx, "tok-4")

	s.Require().NoError(err)
	s.Equal(int64(9), user.ID)
	s.Empty(user.PasswordHash)
}

func (s *AuthUsecaseTestSuite) TestChangePasswordVerifiesOldPassword() {
	stored := &model.User{ID: 4, PasswordHash: hashOf(s.T(), "old-pass")}
	s.mockToken.On("Validate", mock.Anything, "tok-5").Return(stored, nil)

	err := s.usecase.ChangePassword(s.ctx, usecase.ChangePasswordRequest{
		TokenValue:  "tok-5",
		OldPassword: "not-the-old-one",
		NewPassword: "new-pass",
	})

	s.ErrorIs(err, apperrors.ErrInvalidCredentials)
	s.mockStore.AssertNotCalled(s.T(), "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthUsecaseTestSuite) TestChangePasswordSuccess() {
	stored := &model.User{ID: 4, PasswordHash: hashOf(s.T(), "old-pass")}
	s.mockToken.On("Validate", mock.Anything, "tok-5").Return(stored, nil)
	s.mockStore.On("UpdatePasswordHash", mock.Anything, int64(4), mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-pass")) == nil
	})).Return(nil)

	err := s.usecase.ChangePassword(s.ctx, usecase.ChangePasswordRequest{
		TokenValue:  "tok-5",
		OldPassword: "old-pass",
		NewPassword: "new-pass",
	})

	s.Require().NoError(err)
	s.Require().Len(s.activity.records, 1)
	s.Equal(model.ActionPasswordChange, s.activity.records[0].action)
}

func (s *AuthUsecaseTestSuite) TestEnsureAdminCreatesWhenAbsent() {
	s.mockStore.On("GetUserByIdentifier", mock.Anything, "admin@helfy.local").
		Return(nil, apperrors.ErrUserNotFound)
	s.mockStore.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "admin@helfy.local" && u.Username == "admin"
	})).Return(nil)

	s.Require().NoError(s.usecase.EnsureAdmin(s.ctx))
}

func (s *AuthUsecaseTestSuite) TestEnsureAdminResetsHashWhenPresent() {
	s.mockStore.On("GetUserByIdentifier", mock.Anything, "admin@helfy.local").
		Return(&model.User{ID: 1, Email: "admin@helfy.local"}, nil)
	s.mockStore.On("UpdatePasswordHash", mock.Anything, int64(1), mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("admin123")) == nil
	})).Return(nil)

	s.Require().NoError(s.usecase.EnsureAdmin(s.ctx))
	s.mockStore.AssertNotCalled(s.T(), "CreateUser", mock.Anything, mock.Anything)
}

func TestAuthUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(AuthUsecaseTestSuite))
}

func TestRegisterEmailNormalized(t *testing.T) {
	store := &mockCredentialStore{}
	token := &mockTokenService{}
	uc := usecase.NewAuthUsecase(store, token, &stubActivity{}, &config.Config{BcryptCost: bcrypt.MinCost})

	store.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "mixed@case.com"
	})).Return(nil)
	token.On("Issue", mock.Anything, mock.Anything).Return("t", nil)

	_, _, err := uc.Register(context.Background(), usecase.RegisterRequest{
		Email:    "  MiXeD@Case.COM ",
		Username: "mixed",
		Password: "secret1",
	})

	require.NoError(t, err)
	assert.True(t, store.AssertExpectations(t))
}

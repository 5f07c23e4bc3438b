package usecase

import (
	"context"
	"fmt"
	"strings"

	"helfy-server/internal/auth/config"
	"helfy-server/internal/auth/domain/model"
	"helfy-server/internal/auth/domain/repository"
	apperrors "helfy-server/internal/shared/errors"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// ActivityRecorder receives one record per security-relevant action.
type ActivityRecorder interface {
	Record(userID int64, action model.Action, clientIP string)
}

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*model.User, string, error)
	Logout(ctx context.Context, tokenValue, clientIP string) error
	CurrentUser(ctx context.Context, tokenValue string) (*model.User, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	EnsureAdmin(ctx context.Context) error
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientIP string `json:"-"`
}

// LoginRequest represents the login request. Identifier is filled from
// either the email or username field of the request body.
type LoginRequest struct {
	Identifier string `json:"-"`
	Password   string `json:"password"`
	ClientIP   string `json:"-"`
}

// ChangePasswordRequest represents the password change request
type ChangePasswordRequest struct {
	TokenValue  string `json:"-"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
	ClientIP    string `json:"-"`
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	store    repository.CredentialStore
	tokenSvc repository.TokenService
	activity ActivityRecorder
	config   *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	store repository.CredentialStore,
	tokenSvc repository.TokenService,
	activity ActivityRecorder,
	cfg *config.Config,
) *AuthUsecase {
	return &AuthUsecase{
		store:    store,
		tokenSvc: tokenSvc,
		activity: activity,
		config:   cfg,
	}
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.ErrWeakPassword
	}
	return nil
}

// validateToken resolves a token, keeping a missing or expired token
// distinct from a store failure: only the former becomes unauthorized,
// the latter stays an internal error.
func (uc *AuthUsecase) validateToken(ctx context.Context, tokenValue string) (*model.User, error) {
	user, err := uc.tokenSvc.Validate(ctx, tokenValue)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidToken) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	return user, nil
}

// Register creates a new user and logs them in. Duplicate email or
// username surfaces as a conflict; the store constraint decides the winner
// under concurrent attempts.
func (uc *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if email == "" || username == "" || req.Password == "" {
		return nil, "", apperrors.ErrInvalidInput
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.config.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := uc.store.CreateUser(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrIdentifierTaken) {
			return nil, "", apperrors.ErrIdentifierTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := uc.tokenSvc.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	uc.activity.Record(user.ID, model.ActionRegister, req.ClientIP)
	return user.Public(), token, nil
}

// Login verifies credentials and issues a token. An unknown identifier and
// a wrong password return the identical error so callers cannot enumerate
// accounts.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*model.User, string, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, "", apperrors.ErrInvalidInput
	}
	// Emails are stored lowercased at registration; fold the identifier
	// the same way so the exact-match lookup finds them. Usernames are
	// stored verbatim and stay untouched.
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}

	user, err := uc.store.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := uc.tokenSvc.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	uc.activity.Record(user.ID, model.ActionLogin, req.ClientIP)
	return user.Public(), token, nil
}

// Logout revokes the presented token. The token must still be valid; a
// second logout with the same token fails unauthorized since it is gone.
func (uc *AuthUsecase) Logout(ctx context.Context, tokenValue, clientIP string) error {
	user, err := uc.validateToken(ctx, tokenValue)
	if err != nil {
		return err
	}

	if err := uc.tokenSvc.Revoke(ctx, tokenValue); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	uc.activity.Record(user.ID, model.ActionLogout, clientIP)
	return nil
}

// CurrentUser resolves a token to the authenticated user's public fields.
func (uc *AuthUsecase) CurrentUser(ctx context.Context, tokenValue string) (*model.User, error) {
	user, err := uc.validateToken(ctx, tokenValue)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// ChangePassword verifies the old password before replacing the hash.
func (uc *AuthUsecase) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	user, err := uc.validateToken(ctx, req.TokenValue)
	if err != nil {
		return err
	}

	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), uc.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := uc.store.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	uc.activity.Record(user.ID, model.ActionPasswordChange, req.ClientIP)
	return nil
}

// EnsureAdmin creates the bootstrap admin account, or resets its password
// hash if the account already exists.
func (uc *AuthUsecase) EnsureAdmin(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(uc.config.AdminPassword), uc.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	existing, err := uc.store.GetUserByIdentifier(ctx, uc.config.AdminEmail)
	if err == nil {
		return uc.store.UpdatePasswordHash(ctx, existing.ID, string(hash))
	}
	if !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	admin := &model.User{
		Email:        uc.config.AdminEmail,
		Username:     uc.config.AdminUsername,
		PasswordHash: string(hash),
	}
	if err := uc.store.CreateUser(ctx, admin); err != nil {
		// Lost a race against a concurrent bootstrap; the account exists.
		if apperrors.Is(err, apperrors.ErrIdentifierTaken) {
			return nil
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

// Ensure AuthUsecase implements AuthUsecaseInterface
var _ AuthUsecaseInterface = (*AuthUsecase)(nil)

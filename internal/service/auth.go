package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/featherbook/featherbook/internal/auth"
	"github.com/featherbook/featherbook/internal/metrics"
	"github.com/featherbook/featherbook/internal/model"
	"github.com/featherbook/featherbook/internal/repository"
)

// Registration conflicts. Both match repository.ErrDuplicateKey with errors.Is.
var (
	ErrUsernameTaken = fmt.Errorf("username already registered: %w", repository.ErrDuplicateKey)
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", repository.ErrDuplicateKey)
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// AuthService handles registration, login and token refresh.
type AuthService struct {
	repo    *repository.Repository
	tokens  *auth.TokenManager
	hasher  PasswordHasher
	metrics metrics.Recorder

	// dummyHash is verified against when the user is unknown so that
	// login latency does not reveal which usernames exist.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. A nil hasher uses argon2id
// defaults and a nil recorder discards metrics.
func NewAuthService(repo *repository.Repository, tokens *auth.TokenManager, hasher PasswordHasher, recorder metrics.Recorder) *AuthService {
	if hasher == nil {
		hasher = auth.NewPasswordHasher(auth.DefaultArgon2Params)
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		repo:    repo,
		tokens:  tokens,
		hasher:  hasher,
		metrics: recorder,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is a user together with a freshly issued access token.
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an account and issues a token for it. The first account
// ever registered becomes an admin; all later ones get the user role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if existing, err := s.repo.Users.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}
	if existing, err := s.repo.Users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	count, err := s.repo.Users.Count(ctx)
	if err != nil {
		return nil, err
	}
	role := model.RoleUser
	if count == 0 {
		role = model.RoleAdmin
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.NewUser(username, email, role)
	user.PasswordHash = hash

	// The unique indexes still reject a concurrent registration that
	// slipped past the lookups above.
	if _, err := s.repo.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.metrics.IncRegistration()

	return s.issue(user)
}

// Login verifies credentials, stamps the last login time and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.repo.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	if user == nil {
		_, _ = s.hasher.Verify(password, s.dummy())
		s.metrics.IncLogin(metrics.LoginInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil && !errors.Is(err, auth.ErrInvalidHash) && !errors.Is(err, auth.ErrIncompatibleVersion) {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.metrics.IncLogin(metrics.LoginInactive)
		return nil, ErrInactiveAccount
	}

	if _, err := s.repo.Users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	if refreshed, err := s.repo.Users.GetByID(ctx, user.ID); err != nil {
		return nil, err
	} else if refreshed != nil {
		user = refreshed
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return s.issue(user)
}

// Refresh issues a new token for the user named by claims. The account must
// still exist and be active.
func (s *AuthService) Refresh(ctx context.Context, claims *auth.Claims) (*AuthResult, error) {
	if claims == nil {
		return nil, auth.ErrTokenInvalid
	}

	user, err := s.repo.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return s.issue(user)
}

// CurrentUser loads the account named by claims.
func (s *AuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	if claims == nil {
		return nil, auth.ErrTokenInvalid
	}
	user, err := s.repo.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.repo.Users.ListAll(ctx)
}

// TokenTTL returns the validity of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("featherbook-dummy-password")
	})
	return s.dummyHash
}

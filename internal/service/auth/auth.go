package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nkiryanov/chatapi/internal/apperrors"
	"github.com/nkiryanov/chatapi/internal/models"
	"github.com/nkiryanov/chatapi/internal/repository"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type tokenManager interface {
	Issue(user models.User) (models.IssuedToken, error)
	ParseAccess(access string) (userID int64, err error)
}

// Compared when user does not exist, so unknown username costs the same as a wrong password
var dummyHash, _ = DefaultHasher.Hash("dummy-password")

type AuthService struct {
	hasher PasswordHasher
	tokens tokenManager
	users  repository.UserRepo
}

func NewService(hasher PasswordHasher, tokens tokenManager, users repository.UserRepo) (*AuthService, error) {
	if tokens == nil || users == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	if hasher == nil {
		hasher = DefaultHasher
	}

	return &AuthService{
		hasher: hasher,
		tokens: tokens,
		users:  users,
	}, nil
}

// Login checks user credentials and issues access token
// Returns apperrors.ErrInvalidCredentials if user not exists or password is wrong
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.IssuedToken, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	user, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(dummyHash, password)
		return models.IssuedToken{}, apperrors.ErrInvalidCredentials
	default:
		return models.IssuedToken{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	err = s.hasher.Compare(user.HashedPassword, password)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		return models.IssuedToken{}, apperrors.ErrInvalidCredentials
	default:
		return models.IssuedToken{}, fmt.Errorf("can't check password of user %d. Err: %w", user.ID, err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return token, fmt.Errorf("token could not be issued. Err: %w", err)
	}

	return token, nil
}

// Set access token to response
func (s *AuthService) SetToken(w http.ResponseWriter, token models.IssuedToken) {
	w.Header().Set("Authorization", "Bearer "+token.Value)
}

// Auth returns user the request is authenticated as
// Returns apperrors.ErrInvalidToken if bearer token is absent, invalid or belongs to not existed user
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	access, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || access == "" {
		return models.User{}, apperrors.ErrInvalidToken
	}

	userID, err := s.tokens.ParseAccess(access)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		return user, apperrors.ErrInvalidToken
	default:
		return user, fmt.Errorf("can't get user. Err: %w", err)
	}
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/fadhlanhapp/tripplanner-backend/auth"
	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// userSearchLimit caps the results of a user search
const userSearchLimit = 10

// AuthService handles accounts and sessions
type AuthService struct {
	users  repository.UserStore
	tokens *auth.TokenManager

	Now func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserStore, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		Now:    time.Now,
	}
}

// Register creates a new account with a hashed password
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	defer newrelic.FromContext(ctx).StartSegment("auth.Register").End()

	username := utils.NormalizeName(req.Username)
	email := utils.NormalizeName(req.Email)
	required := []struct{ value, field string }{
		{username, "username"},
		{email, "email"},
		{req.FullName, "full name"},
		{req.Password, "password"},
	}
	for _, r := range required {
		if err := utils.ValidateRequired(r.value, r.field); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, utils.NewInternalError("Failed to register user", err)
	}

	user := &models.User{
		ID:           utils.GenerateID(),
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Avatar:       strings.TrimSpace(req.Avatar),
		PasswordHash: hash,
		CreatedAt:    s.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and starts a session
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	defer newrelic.FromContext(ctx).StartSegment("auth.Login").End()

	login := utils.NormalizeName(req.Username)
	if login == "" {
		login = utils.NormalizeName(req.Email)
	}
	if login == "" {
		return nil, utils.NewValidationError("username or email is required")
	}

	user, err := s.users.FindUserByLogin(ctx, login)
	if utils.IsNotFound(err) {
		return nil, utils.NewUnauthorizedError(auth.ErrInvalidCredentials.Error())
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, utils.NewUnauthorizedError(err.Error())
	}

	return s.startSession(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	defer newrelic.FromContext(ctx).StartSegment("auth.Refresh").End()

	claims, err := s.tokens.Refresh.Validate(refreshToken)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid refresh token")
	}

	user, err := s.users.FindUser(ctx, claims.UserID)
	if utils.IsNotFound(err) {
		return nil, utils.NewUnauthorizedError("Invalid refresh token")
	}
	if err != nil {
		return nil, err
	}
	// Only the most recently issued refresh token is accepted
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, utils.NewUnauthorizedError("Refresh token is expired or used")
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	access, refresh, err := s.tokens.Pair(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, utils.NewInternalError("Failed to generate tokens", err)
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}
	user.RefreshToken = refresh
	return &models.AuthResponse{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Logout ends the user's session by forgetting its refresh token
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.users.UpdateRefreshToken(ctx, userID, "")
}

// CurrentUser returns the authenticated user
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindUser(ctx, userID)
}

// Authenticate resolves an access token to a user id
func (s *AuthService) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Access.Validate(token)
	if errors.Is(err, auth.ErrMissingToken) {
		return "", utils.NewUnauthorizedError(utils.ErrUnauthorized)
	}
	if err != nil {
		return "", utils.NewUnauthorizedError("Invalid access token")
	}
	return claims.UserID, nil
}

// SearchUsers finds other users by username or full name prefix
func (s *AuthService) SearchUsers(ctx context.Context, userID, prefix string) ([]models.UserRef, error) {
	defer newrelic.FromContext(ctx).StartSegment("auth.SearchUsers").End()

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []models.UserRef{}, nil
	}
	users, err := s.users.SearchUsers(ctx, prefix, userID, userSearchLimit)
	if err != nil {
		return nil, err
	}
	refs := make([]models.UserRef, 0, len(users))
	for _, user := range users {
		refs = append(refs, user.Ref())
	}
	return refs, nil
}

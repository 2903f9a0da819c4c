package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bhakti2406/local-service-finder/internal/auth"
	"github.com/bhakti2406/local-service-finder/internal/models"

	"github.com/rs/zerolog"
)

const minPasswordLength = 6

type UserService struct {
	store  UserStore
	tokens *auth.TokenManager
	logger *zerolog.Logger
}

func NewUserService(store UserStore, tokens *auth.TokenManager, logger *zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a receiver account and returns it with a session token.
func (s *UserService) Register(ctx context.Context, name, email, password, phone, location string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: invalid email", models.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", models.ErrValidation, minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleReceiver,
		Phone:        strings.TrimSpace(phone),
		Location:     strings.TrimSpace(location),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", models.ErrBadCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", models.ErrBadCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the account behind userID.
func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// UpdateProfile changes the mutable account fields and returns the result.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, phone, location string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
	}

	if err := s.store.UpdateUserProfile(ctx, userID, name, strings.TrimSpace(phone), strings.TrimSpace(location)); err != nil {
		return nil, err
	}
	return s.store.GetUserByID(ctx, userID)
}

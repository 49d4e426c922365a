package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service encapsulates the signup/login/refresh use cases
type Service struct {
	users        UserRepository
	tokens       *TokenService
	passwords    *PasswordManager
	loginLimiter AttemptLimiter
}

func NewService(users UserRepository, tokens *TokenService, passwords *PasswordManager, loginLimiter AttemptLimiter) *Service {
	return &Service{
		users:        users,
		tokens:       tokens,
		passwords:    passwords,
		loginLimiter: loginLimiter,
	}
}

// Signup registers a new user and immediately issues a credential pair
func (s *Service) Signup(ctx context.Context, name, email, password string) (*TokenPair, error) {
	if _, err := s.users.FindByEmail(ctx, email); !errors.Is(err, ErrUserNotFound) {
		if err == nil {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("failed to check email for signup: %w", err)
	}

	passwordHash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user in signup: %w", err)
	}

	return s.tokens.Issue(ctx, user.ID)
}

// Login authenticates by email and password. Attempts are counted per email
// through the shared limiter before credentials are checked, so brute force
// cannot slip through concurrent requests or multiple instances
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	allowed, err := s.loginLimiter.Allow(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check login attempt limit: %w", err)
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// indistinguishable from a bad password on purpose
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user for login: %w", err)
	}

	match, err := s.passwords.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return s.tokens.Issue(ctx, user.ID)
}

// Refresh rotates the presented refresh token into a new credential pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.tokens.Refresh(ctx, refreshToken)
}

// Logout revokes every refresh token the user holds
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/JTL-Inc/guestlist/internal/modules/pkg/clock"
	"github.com/google/uuid"
)

// TokenService owns the credential pair lifecycle: issuance, rotation on
// refresh and revocation. Access token validation never touches the repository
type TokenService struct {
	tokenRepo       TokenRepository
	jwtManager      *JWTManager
	refreshTokenTTL time.Duration
	clock           clock.Clock
}

func NewTokenService(repo TokenRepository, jwtManager *JWTManager, refreshTTL time.Duration, clk clock.Clock) *TokenService {
	return &TokenService{
		tokenRepo:       repo,
		jwtManager:      jwtManager,
		refreshTokenTTL: refreshTTL,
		clock:           clk,
	}
}

// Issue mints a fresh credential pair for the user and persists the hashed
// refresh token with its expiry
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	accessToken, err := s.jwtManager.Generate(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshTokenHash, err := generateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	rt := &RefreshToken{
		TokenHash: refreshTokenHash,
		UserID:    userID,
		ExpiresAt: s.clock.Now().Add(s.refreshTokenTTL),
	}
	if err := s.tokenRepo.Save(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh rotates the refresh token: the presented token is revoked first,
// which proves it was valid and cuts its lineage, then a new pair is issued.
// A token past its expiry fails with ErrTokenExpired even if it was still
// present in the repository
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	revoked, err := s.tokenRepo.Revoke(ctx, hashOpaqueToken(refreshToken))
	if err != nil {
		return nil, err
	}

	if !s.clock.Now().Before(revoked.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	return s.Issue(ctx, revoked.UserID)
}

// Validate checks the access token signature and expiry and returns the
// subject it was issued for. Purely computational, no external calls
func (s *TokenService) Validate(accessToken string) (uuid.UUID, error) {
	return s.jwtManager.Parse(accessToken)
}

func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/JTL-Inc/guestlist/internal/modules/pkg/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager signs and verifies HS256 access tokens. Verification is pure
// computation (signature plus expiry against the injected clock) and performs
// no I/O, so it is safe on every request's hot path
type JWTManager struct {
	secretKey      []byte
	accessTokenTTL time.Duration
	clock          clock.Clock
	parser         *jwt.Parser
}

func NewJWTManager(sk string, attl time.Duration, clk clock.Clock) *JWTManager {
	return &JWTManager{
		secretKey:      []byte(sk),
		accessTokenTTL: attl,
		clock:          clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clk.Now),
		),
	}
}

func (m *JWTManager) Generate(userID uuid.UUID) (string, error) {
	now := m.clock.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": now.Add(m.accessTokenTTL).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Parse validates the token and extracts the subject. A token is considered
// expired at exactly issuance time plus the access TTL, boundary included
func (m *JWTManager) Parse(tokenString string) (uuid.UUID, error) {
	token, err := m.parser.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return m.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrTokenMalformed
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}
	return userID, nil
}

// generateOpaqueToken produces a 32-byte random refresh token and the sha256
// hash under which it is persisted. The raw token never touches storage
func generateOpaqueToken() (token, hash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	token = hex.EncodeToString(randomBytes)
	return token, hashOpaqueToken(token), nil
}

func hashOpaqueToken(token string) string {
	hashBytes := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hashBytes[:])
}

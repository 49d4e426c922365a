package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*RefreshToken)}
}

func (r *fakeTokenRepo) Save(ctx context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *token
	r.tokens[token.TokenHash] = &cp
	return nil
}

func (r *fakeTokenRepo) Revoke(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenHash]
	if !ok {
		return nil, ErrTokenRevoked
	}
	delete(r.tokens, tokenHash)
	return token, nil
}

func (r *fakeTokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, hash)
		}
	}
	return nil
}

func newTestTokenService(t *testing.T) (*TokenService, *fakeTokenRepo, *fakeClock) {
	t.Helper()
	clk := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := newFakeTokenRepo()
	jwtManager := NewJWTManager("test-secret", 15*time.Minute, clk)
	svc := NewTokenService(repo, jwtManager, 7*24*time.Hour, clk)
	return svc, repo, clk
}

func TestIssueValidateRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestTokenService(t)
	userID := uuid.New()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	subject, err := svc.Validate(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, subject)
}

func TestValidate_ExpiredAtExactBoundary(t *testing.T) {
	t.Parallel()

	svc, _, clk := newTestTokenService(t)

	pair, err := svc.Issue(context.Background(), uuid.New())
	require.NoError(t, err)

	// one second before the boundary the token is still good
	clk.Advance(15*time.Minute - time.Second)
	_, err = svc.Validate(pair.AccessToken)
	require.NoError(t, err)

	// at exactly issuance + 15m the token is expired, boundary included
	clk.Advance(time.Second)
	_, err = svc.Validate(pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestTokenService(t)

	_, err := svc.Validate("not-a-token")
	require.ErrorIs(t, err, ErrTokenMalformed)

	// a token signed with a different secret must not validate
	otherClk := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	otherManager := NewJWTManager("other-secret", 15*time.Minute, otherClk)
	foreign, err := otherManager.Generate(uuid.New())
	require.NoError(t, err)

	_, err = svc.Validate(foreign)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestRefresh_RotatesAndRevokesOldToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestTokenService(t)
	userID := uuid.New()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)

	newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// the rotated pair still belongs to the original subject
	subject, err := svc.Validate(newPair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, subject)

	// the spent refresh token is revoked, its lineage is cut
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	t.Parallel()

	svc, _, clk := newTestTokenService(t)

	pair, err := svc.Issue(context.Background(), uuid.New())
	require.NoError(t, err)

	clk.Advance(7*24*time.Hour + time.Minute)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefresh_UnknownToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestTokenService(t)

	_, err := svc.Refresh(context.Background(), "deadbeef")
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeAllForUser(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestTokenService(t)
	userID := uuid.New()

	pair, err := svc.Issue(context.Background(), userID)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllForUser(context.Background(), userID))
	require.Empty(t, repo.tokens)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

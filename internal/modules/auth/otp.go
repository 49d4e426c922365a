package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/JTL-Inc/guestlist/internal/modules/pkg/clock"
	ctxlogger "github.com/JTL-Inc/guestlist/internal/modules/pkg/logger/context"
	"github.com/google/uuid"
)

const otpCodeLength = 6

// OTPRecord is the stored form of a one-time code. Only the sha256 hash of
// the code is kept; the raw code exists in memory long enough to be delivered
type OTPRecord struct {
	SubjectID string    `json:"subject_id"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OTPStore holds OTP records with expiry. Find returns (nil, nil) when no
// record exists for the subject
type OTPStore interface {
	Save(ctx context.Context, rec *OTPRecord, ttl time.Duration) error
	Find(ctx context.Context, subjectID string) (*OTPRecord, error)
	Delete(ctx context.Context, subjectID string) error
}

// OTPDeliverer hands the raw code to an out-of-band channel (SMS, email).
// Delivery itself is an external collaborator of this service
type OTPDeliverer interface {
	Deliver(ctx context.Context, subjectID, code string) error
}

// LogDeliverer is the default no-channel deliverer used in environments
// without a configured SMS/email provider. It logs the dispatch, never the code
type LogDeliverer struct{}

func (LogDeliverer) Deliver(ctx context.Context, subjectID, _ string) error {
	ctxlogger.GetLogger(ctx).Info("one-time code dispatched", slog.String("subject_id", subjectID))
	return nil
}

// OTPService generates and verifies single-use numeric codes. Attempt
// counting goes through a shared atomic limiter so the cap cannot be raced
// past by concurrent verifies or bypassed across instances
type OTPService struct {
	store     OTPStore
	limiter   AttemptLimiter
	deliverer OTPDeliverer
	codeTTL   time.Duration
	clock     clock.Clock
}

func NewOTPService(store OTPStore, limiter AttemptLimiter, deliverer OTPDeliverer, codeTTL time.Duration, clk clock.Clock) *OTPService {
	return &OTPService{
		store:     store,
		limiter:   limiter,
		deliverer: deliverer,
		codeTTL:   codeTTL,
		clock:     clk,
	}
}

// Generate creates a new code for the subject, stores its hash with the
// configured TTL and dispatches the code out-of-band. The caller only ever
// sees an opaque handle, never the code itself
func (s *OTPService) Generate(ctx context.Context, subjectID string) (string, error) {
	code, err := generateNumericCode(otpCodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}

	rec := &OTPRecord{
		SubjectID: subjectID,
		CodeHash:  hashOTPCode(code),
		ExpiresAt: s.clock.Now().Add(s.codeTTL),
	}
	if err := s.store.Save(ctx, rec, s.codeTTL); err != nil {
		return "", fmt.Errorf("failed to store one-time code: %w", err)
	}

	if err := s.deliverer.Deliver(ctx, subjectID, code); err != nil {
		return "", fmt.Errorf("failed to deliver one-time code: %w", err)
	}

	return uuid.NewString(), nil
}

// Verify checks a submitted code. The attempt limit is consulted first, so a
// subject over the cap fails with ErrOTPLocked regardless of code correctness
// or remaining TTL. Only a comparison against a live record spends an attempt;
// verifies against a consumed, missing or expired record do not. A correct
// code consumes the record; a consumed or missing record surfaces as
// ErrOTPExpired
func (s *OTPService) Verify(ctx context.Context, subjectID, submittedCode string) error {
	allowed, err := s.limiter.Peek(ctx, subjectID)
	if err != nil {
		// fail closed: an unreachable counter must not open the attempt cap
		return fmt.Errorf("failed to check attempt limit: %w", err)
	}
	if !allowed {
		return ErrOTPLocked
	}

	rec, err := s.store.Find(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("failed to load one-time code: %w", err)
	}
	if rec == nil {
		return ErrOTPExpired
	}

	if !s.clock.Now().Before(rec.ExpiresAt) {
		if err := s.store.Delete(ctx, subjectID); err != nil {
			ctxlogger.GetLogger(ctx).Warn("failed to delete expired one-time code", slog.String("error", err.Error()))
		}
		return ErrOTPExpired
	}

	// the record is live, this attempt counts
	allowed, err = s.limiter.Allow(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("failed to record verification attempt: %w", err)
	}
	if !allowed {
		return ErrOTPLocked
	}

	submittedHash := hashOTPCode(submittedCode)
	if subtle.ConstantTimeCompare([]byte(submittedHash), []byte(rec.CodeHash)) != 1 {
		return ErrOTPMismatch
	}

	// single use: a verified code is gone
	if err := s.store.Delete(ctx, subjectID); err != nil {
		return fmt.Errorf("failed to consume one-time code: %w", err)
	}
	return nil
}

// generateNumericCode draws each digit uniformly from a cryptographically
// secure source. math/rand is not acceptable for codes guarding accounts
func generateNumericCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

func hashOTPCode(code string) string {
	hash := sha256.Sum256([]byte(code))
	return hex.EncodeToString(hash[:])
}

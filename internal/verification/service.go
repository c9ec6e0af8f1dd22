// Package verification issues short-lived numeric codes by email and checks them.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/redmonkez12/shop-api/internal/email"
	"github.com/redmonkez12/shop-api/internal/logging"
)

var (
	ErrEmailRequired = errors.New("email is required")
	ErrSendFailed    = errors.New("failed to send verification email")
	ErrNoPendingCode = errors.New("no pending code")
	ErrCodeExpired   = errors.New("code expired")
	ErrCodeMismatch  = errors.New("code mismatch")
)

// DefaultTTL is how long an issued code stays valid
const DefaultTTL = 5 * time.Minute

const (
	minCode = 100000
	maxCode = 999999
)

// Reason returns the machine-readable reason for a failed Verify
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNoPendingCode):
		return "no_pending_code"
	case errors.Is(err, ErrCodeExpired):
		return "expired"
	case errors.Is(err, ErrCodeMismatch):
		return "mismatch"
	default:
		return ""
	}
}

// Metrics receives verification events
type Metrics interface {
	CodeIssued()
	CodeChecked(result string)
}

type nopMetrics struct{}

func (nopMetrics) CodeIssued()        {}
func (nopMetrics) CodeChecked(string) {}

// Service issues and verifies codes
type Service struct {
	store    Store
	sender   email.Sender
	metrics  Metrics
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

// NewService creates a verification service. A zero ttl means DefaultTTL; nil metrics are ignored.
func NewService(store Store, sender email.Sender, ttl time.Duration, metrics Metrics) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		store:    store,
		sender:   sender,
		metrics:  metrics,
		ttl:      ttl,
		now:      time.Now,
		generate: generateCode,
	}
}

// Issue mails a fresh code to address and then stores it, replacing any pending one.
// Nothing is stored when delivery fails.
func (s *Service) Issue(ctx context.Context, address string) error {
	logger := logging.GetLoggerFromContext(ctx)

	key := normalizeEmail(address)
	if key == "" {
		return ErrEmailRequired
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	msg, err := email.VerificationCode(strings.TrimSpace(address), code, s.ttl)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		logger.Error("failed to send verification email", "email", key, "error", err)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	if err := s.store.Put(ctx, key, Entry{Code: code, ExpiresAt: s.now().Add(s.ttl)}); err != nil {
		return err
	}

	s.metrics.CodeIssued()
	logger.Info("verification code sent", "email", key)
	return nil
}

// Verify consumes the pending code for address when code matches it and it has not expired
func (s *Service) Verify(ctx context.Context, address, code string) error {
	err := s.store.Consume(ctx, normalizeEmail(address), strings.TrimSpace(code), s.now())
	switch reason := Reason(err); {
	case err == nil:
		s.metrics.CodeChecked("verified")
	case reason != "":
		s.metrics.CodeChecked(reason)
	}
	return err
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+minCode, 10), nil
}

func normalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

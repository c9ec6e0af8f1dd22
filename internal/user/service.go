package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/shop-api/internal/logging"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
)

// Service handles account business logic
type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// FindByEmail returns the matching user, or nil when there is none
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Register creates an account. profile carries the email and any extra members; password is
// stored only as an argon2id hash.
func (s *Service) Register(ctx context.Context, profile User, password string) (*User, error) {
	profile.Email = strings.TrimSpace(profile.Email)
	if profile.Email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := profile
	u.ID = uuid.NewString()
	u.PasswordHash = hash
	u.CreatedAt = s.now().UTC()
	u.Extra = profile.Extra.Without(legacyPasswordField)

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login matches email (ignoring case) and password. Every mismatch is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	logger := logging.GetLoggerFromContext(ctx)

	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		verifyPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if u.PasswordHash != "" {
		if !verifyPassword(u.PasswordHash, password) {
			return nil, ErrInvalidCredentials
		}
		return u, nil
	}

	legacy, ok := u.legacyPassword()
	if !ok || subtle.ConstantTimeCompare([]byte(legacy), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	upgraded, err := s.upgradeLegacyPassword(ctx, u.ID, password)
	if err != nil {
		// the login itself succeeded; the plaintext stays until the next attempt
		logger.Error("failed to hash legacy password", "user_id", u.ID, "error", err)
		return u, nil
	}
	logger.Info("legacy password upgraded", "user_id", u.ID)
	return upgraded, nil
}

func (s *Service) upgradeLegacyPassword(ctx context.Context, id, password string) (*User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.repo.Modify(ctx, id, func(u *User) error {
		u.PasswordHash = hash
		u.Extra = u.Extra.Without(legacyPasswordField)
		return nil
	})
}

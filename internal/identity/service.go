package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/clemsytoff/tradesarace/internal/apperror"
)

const (
	passwordCost      = 10
	minPasswordLength = 6
)

const invalidCredentials = "Invalid email or password"

// Service manages registration and credential checks.
type Service struct {
	repo Repository

	decoyOnce sync.Once
	decoy     []byte
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates the credentials, hashes the password and creates a user
// holding the default wallet.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	name := strings.TrimSpace(creds.Name)
	email := NormalizeEmail(creds.Email)
	if name == "" || email == "" || creds.Password == "" {
		return User{}, apperror.Validation("Name, email and password are required")
	}
	if utf8.RuneCountInString(creds.Password) < minPasswordLength {
		return User{}, apperror.Validation("Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), passwordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return User{}, apperror.Validation("Password must be at most 72 bytes")
	}
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, NewUser{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			return User{}, apperror.Conflict("An account with this email already exists")
		}
		return User{}, apperror.Storage(err)
	}
	return user, nil
}

// Authenticate verifies an email and password. Unknown emails and wrong
// passwords fail with the same error and comparable latency.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return User{}, apperror.Validation("Email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.decoyHash(), []byte(password))
			return User{}, apperror.Unauthorized(invalidCredentials)
		}
		return User{}, apperror.Storage(err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, apperror.Unauthorized(invalidCredentials)
	}
	return user, nil
}

// Lookup returns the user with the given id.
func (s *Service) Lookup(ctx context.Context, id int64) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return User{}, apperror.NotFound("User not found")
		}
		return User{}, apperror.Storage(err)
	}
	return user, nil
}

func (s *Service) decoyHash() []byte {
	s.decoyOnce.Do(func() {
		s.decoy, _ = bcrypt.GenerateFromPassword([]byte("decoy-password"), passwordCost)
	})
	return s.decoy
}

// Package auth implements registration, login, session introspection and
// logout on top of the identity and session packages.
package auth

import (
	"context"
	"errors"

	"github.com/clemsytoff/tradesarace/internal/apperror"
	"github.com/clemsytoff/tradesarace/internal/identity"
	"github.com/clemsytoff/tradesarace/internal/session"
)

const unauthorizedMessage = "Unauthorized"

// Service coordinates credentials and sessions.
type Service struct {
	ids      *identity.Service
	sessions *session.Manager
}

// NewService builds an auth service.
func NewService(ids *identity.Service, sessions *session.Manager) *Service {
	return &Service{ids: ids, sessions: sessions}
}

// Register creates an account. It does not open a session.
func (s *Service) Register(ctx context.Context, creds identity.Credentials) (identity.Public, error) {
	user, err := s.ids.Register(ctx, creds)
	if err != nil {
		return identity.Public{}, err
	}
	return user.Public(), nil
}

// Login checks the credentials and opens a session, returning the signed
// cookie value.
func (s *Service) Login(ctx context.Context, email, password string) (identity.Public, string, error) {
	user, err := s.ids.Authenticate(ctx, email, password)
	if err != nil {
		return identity.Public{}, "", err
	}
	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return identity.Public{}, "", apperror.Storage(err)
	}
	return user.Public(), token, nil
}

// Me returns the user behind principal. A session whose user no longer
// exists is destroyed and reported as unauthorized.
func (s *Service) Me(ctx context.Context, principal session.Principal) (identity.Public, error) {
	if principal.UserID <= 0 {
		return identity.Public{}, apperror.Unauthorized(unauthorizedMessage)
	}
	user, err := s.ids.Lookup(ctx, principal.UserID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			if destroyErr := s.sessions.Destroy(ctx, principal.SessionID); destroyErr != nil {
				return identity.Public{}, apperror.Storage(errors.Join(err, destroyErr))
			}
			return identity.Public{}, apperror.Unauthorized(unauthorizedMessage)
		}
		return identity.Public{}, err
	}
	return user.Public(), nil
}

// Logout revokes the session named by token. Failures are returned for
// logging only; callers still treat the logout as done.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/auth"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/repositories"
)

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

type AuthService struct {
	store  repositories.Store
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
	// dummyHash keeps the unknown-user path as slow as a real comparison.
	dummyHash string
}

func NewAuthService(store repositories.Store, hasher *auth.PasswordHasher, tokens *auth.TokenService) (*AuthService, error) {
	dummy, err := hasher.Hash("eventhub-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{store: store, hasher: hasher, tokens: tokens, dummyHash: dummy}, nil
}

// Authenticate returns the same bad-credentials error for an unknown user,
// a wrong password and a disabled account.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (Session, error) {
	var user models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		user, err = tx.FindUser(ctx, username)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			return Session{}, err
		}
		s.hasher.Verify(password, s.dummyHash)
		return Session{}, apperr.ErrBadCredentials
	}

	if !s.hasher.Verify(password, user.Password) || !user.Enabled {
		return Session{}, apperr.ErrBadCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, user.RoleNames())
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

type Principal struct {
	Username    string
	Email       string
	Authorities []string
}

// Me describes the caller. The authorities are the ones carried by the
// token, not the current role rows.
func (s *AuthService) Me(ctx context.Context, id auth.Identity) (Principal, error) {
	if id.Anonymous() {
		return Principal{}, apperr.Unauthenticated("authentication required")
	}
	user, err := s.store.FindUser(ctx, id.Subject)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Principal{}, apperr.Unauthenticated("user %s no longer exists", id.Subject)
		}
		return Principal{}, err
	}
	return Principal{
		Username:    user.Username,
		Email:       user.Email,
		Authorities: id.AuthorityNames(),
	}, nil
}

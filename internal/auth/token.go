package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const MinSigningKeyLength = 32

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenClaims is the JWT payload: subject, issued-at and expiry come from
// the registered claims.
type TokenClaims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens. The key is fixed for
// the lifetime of the process.
type TokenService struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type TokenOption func(*TokenService)

func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) { s.issuer = issuer }
}

func NewTokenService(key []byte, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(key) < MinSigningKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes", MinSigningKeyLength)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	s := &TokenService{
		key: append([]byte(nil), key...),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(subject string, authorities []string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject is required")
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := TokenClaims{
		Authorities: append([]string{}, authorities...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate returns ErrTokenExpired for a well-signed token past its expiry
// and ErrTokenInvalid for everything else that fails.
func (s *TokenService) Validate(tokenString string) (Identity, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, ErrTokenInvalid
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return Identity{}, ErrTokenInvalid
	}

	return Identity{
		Subject:     claims.Subject,
		Authorities: NewAuthoritySet(claims.Authorities...),
	}, nil
}

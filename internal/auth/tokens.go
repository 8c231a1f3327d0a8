package auth

import (
	"errors"
	"time"

	"github.com/2beens/gymtracker/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 30 * time.Minute

type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenService issues and validates HS256 signed bearer tokens carrying the
// username as subject and a fixed expiry. Validation never touches storage.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret not set")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(subject string) (*Token, error) {
	now := s.now()
	// exp is encoded in whole seconds, the advertised expiry must not be later
	expiresAt := now.Add(s.ttl).Truncate(time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "sign token")
	}

	return &Token{
		Value:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate returns the token subject. Malformed, tampered and expired tokens are InvalidToken.
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.New(apperr.InvalidToken, "token expired")
		}
		return "", apperr.Wrap(apperr.InvalidToken, err, "token rejected")
	}

	if claims.Subject == "" {
		return "", apperr.New(apperr.InvalidToken, "token has no subject")
	}
	return claims.Subject, nil
}

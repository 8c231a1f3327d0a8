package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/2beens/gymtracker/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testSecret = []byte("test-secret")

func newTestTokenService(t *testing.T, now *time.Time) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, 30*time.Minute)
	require.NoError(t, err)
	ts.now = func() time.Time {
		return *now
	}
	return ts
}

func TestTokenService_ExpiresAtMatchesClaim(t *testing.T) {
	now := time.Date(2025, 9, 28, 10, 0, 0, 750_000_000, time.UTC)
	ts := newTestTokenService(t, &now)

	token, err := ts.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 28, 10, 30, 0, 0, time.UTC), token.ExpiresAt)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token.Value, claims)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.Time.Equal(token.ExpiresAt))

	// valid up to the advertised expiry, not a moment longer
	now = token.ExpiresAt.Add(-time.Millisecond)
	_, err = ts.Validate(token.Value)
	require.NoError(t, err)

	now = token.ExpiresAt
	_, err = ts.Validate(token.Value)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService(nil, time.Minute)
	require.Error(t, err)

	ts, err := NewTokenService(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, ts.TTL())
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	now := time.Date(2025, 9, 28, 10, 0, 0, 0, time.UTC)
	ts := newTestTokenService(t, &now)

	token, err := ts.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), token.ExpiresAt)

	subject, err := ts.Validate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)

	// still valid in the last second of the window
	now = now.Add(30*time.Minute - time.Second)
	subject, err = ts.Validate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)

	// 1 second past expiry
	now = token.ExpiresAt.Add(time.Second)
	_, err = ts.Validate(token.Value)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestTokenService_Validate_Rejects(t *testing.T) {
	now := time.Date(2025, 9, 28, 10, 0, 0, 0, time.UTC)
	ts := newTestTokenService(t, &now)

	token, err := ts.Issue("alice")
	require.NoError(t, err)

	otherSecret, err := NewTokenService([]byte("other-secret"), time.Hour)
	require.NoError(t, err)
	otherSecret.now = ts.now
	forged, err := otherSecret.Issue("alice")
	require.NoError(t, err)

	parts := strings.Split(token.Value, ".")
	require.Len(t, parts, 3)
	forgedParts := strings.Split(forged.Value, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString(testSecret)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	for name, tokenValue := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"other secret": forged.Value,
		"tampered":     tampered,
		"alg none":     noneToken,
		"no expiry":    noExpiry,
		"no subject":   noSubject,
	} {
		_, err := ts.Validate(tokenValue)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, apperr.ErrInvalidToken), name)
	}
}

package rest

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour)

	token, err := ti.Issue("user-1")
	require.NoError(t, err)

	id, err := ti.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestTokenIssuer_DefaultTTL(t *testing.T) {
	ti := NewTokenIssuer("secret", 0)
	assert.Equal(t, 7*24*time.Hour, ti.ttl)
}

func TestTokenIssuer_Expired(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ti.now = func() time.Time { return issued }

	token, err := ti.Issue("user-1")
	require.NoError(t, err)

	ti.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = ti.Verify(token)
	assert.NoError(t, err)

	ti.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = ti.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour)
	valid, err := ti.Issue("user-1")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "user-1"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"other secret": mustIssue(t, NewTokenIssuer("other", time.Hour)),
		"tampered":     swapPayload(t, valid, mustIssueFor(t, ti, "user-2")),
		"alg none":     unsigned,
		"no expiry":    noExpiry,
		"no user id":   noUser,
		"garbage":      "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ti.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func mustIssue(t *testing.T, ti *TokenIssuer) string {
	return mustIssueFor(t, ti, "user-1")
}

func mustIssueFor(t *testing.T, ti *TokenIssuer, userID string) string {
	t.Helper()
	token, err := ti.Issue(userID)
	require.NoError(t, err)
	return token
}

// swapPayload keeps the header and signature of signed but carries the claims of other.
func swapPayload(t *testing.T, signed, other string) string {
	t.Helper()
	a := strings.Split(signed, ".")
	b := strings.Split(other, ".")
	require.Len(t, a, 3)
	require.Len(t, b, 3)
	return a[0] + "." + b[1] + "." + a[2]
}

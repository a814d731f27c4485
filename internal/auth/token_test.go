package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"hr-admin-backend/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("k", 32)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	p := Principal{ID: 7, UserID: strings.Repeat("a", 32), Name: "Ada", Role: user.RoleAdmin}

	tok, exp, err := iss.Issue(p)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := iss.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := NewIssuer(testSecret, time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := iss.Issue(Principal{ID: 1, UserID: "u", Role: user.RoleEmployee})
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsWrongSecret(t *testing.T) {
	tok, _, err := NewIssuer(testSecret, time.Hour).Issue(Principal{ID: 1, UserID: "u", Role: user.RoleEmployee})
	require.NoError(t, err)

	_, err = NewIssuer(strings.Repeat("x", 32), time.Hour).Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UID: 1, Role: user.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer(testSecret, time.Hour).Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsUnknownRole(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	tok, _, err := iss.Issue(Principal{ID: 1, UserID: "u", Role: user.Role("ROOT")})
	require.NoError(t, err)

	_, err = iss.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	require.False(t, ok)

	p := Principal{ID: 3, UserID: "abc", Role: user.RoleEmployee}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	require.Equal(t, p, got)
}

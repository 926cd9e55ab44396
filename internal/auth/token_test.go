package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(testSecret, Principal{UserID: 42, Role: RoleApprover}, time.Hour)
	require.NoError(t, err)

	principal, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	require.Equal(t, int64(42), principal.UserID)
	require.Equal(t, RoleApprover, principal.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, Principal{UserID: 1, Role: RoleAdmin}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other-secret"), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsUnknownRole(t *testing.T) {
	token, err := IssueToken(testSecret, Principal{UserID: 1, Role: Role("SUPERUSER")}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := IssueToken(testSecret, Principal{UserID: 1, Role: RoleAuditor}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRole(t *testing.T) {
	for raw, want := range map[string]Role{
		"accountant": RoleAccountant,
		" ADMIN ":    RoleAdmin,
		"Auditor":    RoleAuditor,
	} {
		role, ok := ParseRole(raw)
		require.True(t, ok, raw)
		require.Equal(t, want, role)
	}
	_, ok := ParseRole("root")
	require.False(t, ok)
}

package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salonsys/salon-admin/internal/models"
)

var testUser = &models.User{
	ID:       42,
	Username: "maria",
	Email:    "m@x.com",
	IsActive: true,
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Minute)

	raw, exp, err := svc.Issue(testUser)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.True(t, exp.After(time.Now()))

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "m@x.com", claims.Email)
	require.Equal(t, "user", claims.Role)

	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, uint(42), id)
}

func TestIssueAdminRole(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Minute)

	admin := *testUser
	admin.IsAdmin = true

	raw, _, err := svc.Issue(&admin)
	require.NoError(t, err)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Role)
}

func TestVerifyTampered(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Minute)

	raw, _, err := svc.Issue(testUser)
	require.NoError(t, err)

	// Flip one byte in the payload; the signature must no longer match.
	b := []byte(raw)
	mid := len(b) / 2
	if b[mid] == 'a' {
		b[mid] = 'b'
	} else {
		b[mid] = 'a'
	}

	_, err = svc.Verify(string(b))
	require.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewService([]byte("secret-one"), time.Minute)
	verifier := NewService([]byte("secret-two"), time.Minute)

	raw, _, err := issuer.Issue(testUser)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.Error(t, err)
}

func TestVerifyExpired(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Millisecond)

	raw, _, err := svc.Issue(testUser)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = svc.Verify(raw)
	require.Error(t, err)
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Minute)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(raw)
		require.Error(t, err, "input %q", raw)
	}
}

func TestDefaultTTL(t *testing.T) {
	svc := NewService([]byte("test-secret"), 0)

	_, exp, err := svc.Issue(testUser)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(DefaultTTL), exp, 5*time.Second)
}

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_backend/internal/models"
)

const testSecret = "test-secret-test-secret-test-secret!"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService(testSecret, time.Hour, "test").WithClock(fixedClock(now))

	token, expiresAt, err := svc.Issue("acc-1", models.RoleCompany)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", identity.AccountID)
	assert.Equal(t, models.RoleCompany, identity.Role)
}

func TestTokenService_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenService(testSecret, time.Minute, "test").WithClock(fixedClock(now))

	token, _, err := issuer.Issue("acc-1", models.RoleStudent)
	require.NoError(t, err)

	later := issuer.WithClock(fixedClock(now.Add(2 * time.Minute)))
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_RejectsTampering(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, "test")
	token, _, err := svc.Issue("acc-1", models.RoleStudent)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("another-secret-another-secret-1234", time.Hour, "test")
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenService(testSecret, time.Hour, "someone-else")
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("modified payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		forged := parts[0] + "." + parts[1] + "x." + parts[2]
		_, err := svc.Verify(forged)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Verify("")
		assert.ErrorIs(t, err, ErrTokenMissing)
	})
}

func TestTokenService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, "test")
	claims := Claims{
		Role: string(models.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc-1",
			Issuer:    "test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_RejectsUnknownRole(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, "test")
	claims := Claims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc-1",
			Issuer:    "test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, err = svc.Issue("acc-1", models.Role("superuser"))
	assert.Error(t, err)
}

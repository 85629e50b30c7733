package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "mcl-test")
	accountID := uuid.New()

	token, expiresAt, err := svc.Generate(accountID, false)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.False(t, claims.Admin)
}

func TestJWTTokenService_AdminFlag(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "mcl-test")

	token, _, err := svc.Generate(uuid.New(), true)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestJWTTokenService_WrongSecret(t *testing.T) {
	svc := NewJWTTokenService("secret-a", time.Hour, "mcl-test")
	other := NewJWTTokenService("secret-b", time.Hour, "mcl-test")

	token, _, err := svc.Generate(uuid.New(), false)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_ExpiredToken(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", -time.Minute, "mcl-test")

	token, _, err := svc.Generate(uuid.New(), false)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Malformed(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "mcl-test")

	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "mcl-test")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_NonUUIDSubject(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "mcl-test")

	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := signed.SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

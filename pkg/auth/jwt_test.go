package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestValidator(t *testing.T) *JWTValidator {
	t.Helper()
	validator, err := NewJWTValidator(JWTConfig{
		SecretKey: testSecret,
		Issuer:    "memorylane-backend",
	})
	require.NoError(t, err)
	return validator
}

func newTestGenerator(t *testing.T, ttl time.Duration) *JWTGenerator {
	t.Helper()
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey: testSecret,
		Issuer:    "memorylane-backend",
		TTL:       ttl,
	})
	require.NoError(t, err)
	return generator
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	generator := newTestGenerator(t, time.Hour)
	validator := newTestValidator(t)

	token, err := generator.GenerateToken("alice", "alice@example.com", []string{"user"})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Identity)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, []string{"user"}, claims.Roles)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	generator := newTestGenerator(t, time.Hour)
	token, err := generator.GenerateToken("alice", "", nil)
	require.NoError(t, err)

	validator, err := NewJWTValidator(JWTConfig{SecretKey: "a-different-secret"})
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey: testSecret,
		Issuer:    "memorylane-backend",
		TTL:       time.Nanosecond,
	})
	require.NoError(t, err)

	token, err := generator.GenerateToken("alice", "", nil)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	validator := newTestValidator(t)
	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidator_WrongIssuer(t *testing.T) {
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey: testSecret,
		Issuer:    "somebody-else",
		TTL:       time.Hour,
	})
	require.NoError(t, err)

	token, err := generator.GenerateToken("alice", "", nil)
	require.NoError(t, err)

	validator := newTestValidator(t)
	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidIssuer)
}

func TestJWTValidator_GarbageToken(t *testing.T) {
	validator := newTestValidator(t)

	_, err := validator.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTValidator_Configuration(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)

	_, err = NewJWTValidator(JWTConfig{SecretKey: "k", SigningMethod: "RS256"})
	assert.Error(t, err)
}

func TestJWTValidator_IdentityFallsBackToSubject(t *testing.T) {
	// Generated tokens carry both claims; the subject alone must be enough
	// for tokens minted by external issuers
	generator := newTestGenerator(t, time.Hour)
	token, err := generator.GenerateToken("alice", "", nil)
	require.NoError(t, err)

	claims, err := newTestValidator(t).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, claims.Subject, claims.Identity)
}

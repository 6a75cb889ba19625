package auth

import (
	"testing"
	"time"

	apperrors "timetracker-backend/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	service := NewService("test-signing-key")
	userID := uuid.New()

	token, err := service.GenerateToken(userID, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.MustUserID())
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issued, err := NewService("secret-a").GenerateToken(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = NewService("secret-b").ValidateToken(issued)
	assert.True(t, apperrors.IsAuthentication(err))
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := NewService("test-signing-key").ValidateToken("not-a-token")
	assert.True(t, apperrors.IsAuthentication(err))
}

func TestValidateTokenExpired(t *testing.T) {
	service := NewService("test-signing-key")
	claims := Claims{
		UserID: uuid.New().String(),
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = service.ValidateToken(expired)
	assert.True(t, apperrors.IsAuthentication(err))
}

func TestValidateTokenRejectsNonHMAC(t *testing.T) {
	service := NewService("test-signing-key")
	// alg "none" style tokens must be rejected by the signing method check.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.New().String()})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateToken(unsigned)
	assert.True(t, apperrors.IsAuthentication(err))
}

func TestValidateTokenBadUserID(t *testing.T) {
	service := NewService("test-signing-key")
	claims := Claims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.True(t, apperrors.IsAuthentication(err))
}

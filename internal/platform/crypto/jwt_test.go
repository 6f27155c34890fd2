package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateToken(t *testing.T) {
	issued, err := GenerateToken(testSecret, 42, TokenTypeAccess, time.Hour)

	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Len(t, issued.JTI, 32)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	other, err := GenerateToken(testSecret, 42, TokenTypeAccess, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, issued.JTI, other.JTI)
}

func TestParseToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		issued, err := GenerateToken(testSecret, 42, TokenTypeRefresh, time.Hour)
		require.NoError(t, err)

		claims, err := ParseToken(testSecret, issued.Token)
		require.NoError(t, err)
		assert.Equal(t, TokenTypeRefresh, claims.Type)
		assert.Equal(t, issued.JTI, claims.ID)

		userID, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("invalid signature", func(t *testing.T) {
		issued, err := GenerateToken("wrong-secret", 42, TokenTypeAccess, time.Hour)
		require.NoError(t, err)

		claims, err := ParseToken(testSecret, issued.Token)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("expired token", func(t *testing.T) {
		c := Claims{
			Type: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
		require.NoError(t, err)

		claims, err := ParseToken(testSecret, token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
		assert.Nil(t, claims)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		c := Claims{
			Type: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ParseToken(testSecret, token)
		assert.Error(t, err)
	})

	t.Run("malformed token", func(t *testing.T) {
		claims, err := ParseToken(testSecret, "not.a.valid.token")
		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}

func TestParseTokenOfType(t *testing.T) {
	access, err := GenerateToken(testSecret, 7, TokenTypeAccess, time.Hour)
	require.NoError(t, err)

	_, err = ParseTokenOfType(testSecret, access.Token, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := ParseTokenOfType(testSecret, access.Token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
}

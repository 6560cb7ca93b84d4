package tokenmanager

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/chatapi/internal/apperrors"
	"github.com/nkiryanov/chatapi/internal/models"
)

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:             42,
		Username:       "testuser",
		HashedPassword: "hashed_password",
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, "secret", m.key, "secret key should be set")
		require.Equal(t, "HS256", m.alg.Alg(), "default alg should be HS256")
		require.Equal(t, time.Hour, m.accessTTL, "default access ttl should be 1 hour")
	})

	t.Run("new without secret fails", func(t *testing.T) {
		_, err := New(Config{})

		require.Error(t, err)
	})

	t.Run("new with not hmac alg fails", func(t *testing.T) {
		for _, alg := range []string{"RS256", "none", "unknown"} {
			_, err := New(Config{SecretKey: "secret", Alg: alg})

			require.Errorf(t, err, "alg %s must not be accepted", alg)
		}
	})

	t.Run("issue and parse ok", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret", AccessTTL: 10 * time.Minute})
		require.NoError(t, err)

		token, err := m.Issue(testUser)
		require.NoError(t, err)
		require.NotEmpty(t, token.Value)
		require.WithinDuration(t, time.Now().Add(10*time.Minute), token.ExpiresAt, 2*time.Second)

		userID, err := m.ParseAccess(token.Value)

		require.NoError(t, err)
		require.Equal(t, int64(42), userID)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err)

		first, err := m.Issue(testUser)
		require.NoError(t, err)
		second, err := m.Issue(testUser)
		require.NoError(t, err)

		require.NotEqual(t, first.Value, second.Value, "token id must differ")
	})

	t.Run("parse with other key fails", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err)
		other, err := New(Config{SecretKey: "other-secret"})
		require.NoError(t, err)

		token, err := other.Issue(testUser)
		require.NoError(t, err)

		_, err = m.ParseAccess(token.Value)

		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("parse expired fails", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err)

		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
			UserID: testUser.ID,
		})
		value, err := expired.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = m.ParseAccess(value)

		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("parse garbage fails", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err)

		_, err = m.ParseAccess("not-a-token")

		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

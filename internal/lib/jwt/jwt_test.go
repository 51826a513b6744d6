package jwt_test

import (
	"testing"
	"time"

	"bluora_auth/internal/lib/jwt"
	"bluora_auth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken_RoundTrip(t *testing.T) {
	t.Parallel()

	claims := models.Claims{ID: 42, Name: "Alice", Email: "alice@example.com"}

	token, err := jwt.NewToken(claims, "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, claims, parsed)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	claims := models.Claims{ID: 1, Name: "A", Email: "a@example.com"}

	token, err := jwt.NewToken(claims, "secret", -time.Second)
	require.NoError(t, err)

	_, err = jwt.ParseToken(token, "secret")
	require.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	claims := models.Claims{ID: 1, Name: "A", Email: "a@example.com"}

	token, err := jwt.NewToken(claims, "right-secret", time.Hour)
	require.NoError(t, err)

	_, err = jwt.ParseToken(token, "wrong-secret")
	require.Error(t, err)
}

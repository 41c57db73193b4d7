package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, err := GenerateAccessToken("user-1", time.Now().Add(time.Hour), []byte(testSecret))
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestGenerateAccessTokenValidation(t *testing.T) {
	_, err := GenerateAccessToken("", time.Time{}, []byte(testSecret))
	assert.Error(t, err)
	_, err = GenerateAccessToken("user-1", time.Time{}, nil)
	assert.Error(t, err)
}

func TestParseAccessTokenRejects(t *testing.T) {
	expired, err := GenerateAccessToken("user-1", time.Now().Add(-time.Minute), []byte(testSecret))
	require.NoError(t, err)

	otherSecret, err := GenerateAccessToken("user-1", time.Time{}, []byte("other"))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &ClaimsMessage{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"other secret": otherSecret,
		"alg none":     none,
		"no user id":   noUser,
		"wrong issuer": wrongIssuer,
		"garbage":      "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(token, []byte(testSecret))
			assert.Error(t, err)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearerToken("bearer abc"))
	assert.Equal(t, "", ExtractBearerToken("Basic abc"))
	assert.Equal(t, "", ExtractBearerToken("Bearer"))
	assert.Equal(t, "", ExtractBearerToken(""))
}

func TestAuthenticate(t *testing.T) {
	authenticator := NewAuthenticator(testSecret)
	token, err := GenerateAccessToken("user-1", time.Time{}, []byte(testSecret))
	require.NoError(t, err)

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		result, err := authenticator.Authenticate(req)
		require.NoError(t, err)
		assert.Equal(t, "user-1", result.UserID)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: token})
		result, err := authenticator.Authenticate(req)
		require.NoError(t, err)
		assert.Equal(t, "user-1", result.UserID)
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := authenticator.Authenticate(req)
		assert.Error(t, err)
	})

	t.Run("invalid header does not fall back to cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer broken")
		req.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: token})
		_, err := authenticator.Authenticate(req)
		assert.Error(t, err)
	})
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetUserID(ctx))

	ctx = SetUserIDInContext(ctx, "user-1")
	assert.Equal(t, "user-1", GetUserID(ctx))
}

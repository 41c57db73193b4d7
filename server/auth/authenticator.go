package auth

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Authenticator resolves the calling user from request credentials.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator that verifies tokens signed with secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// AuthResult is the authenticated identity of a request.
type AuthResult struct {
	UserID string
	Claims *ClaimsMessage
}

// Authenticate checks the Authorization header first and the access token cookie second.
func (a *Authenticator) Authenticate(r *http.Request) (*AuthResult, error) {
	token := ExtractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		if cookie, err := r.Cookie(AccessTokenCookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return nil, errors.New("missing access token")
	}
	return a.AuthenticateToken(token)
}

// AuthenticateToken verifies a raw access token.
func (a *Authenticator) AuthenticateToken(token string) (*AuthResult, error) {
	claims, err := ParseAccessToken(token, a.secret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{UserID: claims.UserID, Claims: claims}, nil
}

// ExtractBearerToken returns the token of a "Bearer <token>" header, or "".
func ExtractBearerToken(authHeader string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

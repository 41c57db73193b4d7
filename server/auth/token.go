// Package auth issues and verifies the access tokens that identify a user.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// Issuer is the issuer of access tokens.
	Issuer = "taskfuchs"
	// KeyID is the key id stamped into the token header.
	KeyID = "v1"
	// AccessTokenCookieName is the cookie that carries the access token for browser clients.
	AccessTokenCookieName = "taskfuchs.access-token"
	// AccessTokenDuration is the lifetime of tokens minted by the token command.
	AccessTokenDuration = 24 * time.Hour
)

// ClaimsMessage is the JWT payload of an access token.
type ClaimsMessage struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an HS256 access token for userID.
// A zero expiresAt produces a token that never expires.
func GenerateAccessToken(userID string, expiresAt time.Time, secret []byte) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if len(secret) == 0 {
		return "", errors.New("secret is required")
	}
	registeredClaims := jwt.RegisteredClaims{
		Issuer:   Issuer,
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	if !expiresAt.IsZero() {
		registeredClaims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		UserID:           userID,
		RegisteredClaims: registeredClaims,
	})
	token.Header["kid"] = KeyID

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// ParseAccessToken verifies tokenString and returns its claims.
func ParseAccessToken(tokenString string, secret []byte) (*ClaimsMessage, error) {
	claims := &ClaimsMessage{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		return nil, errors.Wrap(err, "invalid access token")
	}
	if claims.UserID == "" {
		return nil, errors.New("access token has no user id")
	}
	return claims, nil
}

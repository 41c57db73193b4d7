package auth

import "context"

type contextKey int

// UserIDContextKey is the context key for the authenticated user id.
const UserIDContextKey contextKey = iota

// SetUserIDInContext stores the authenticated user id in ctx.
func SetUserIDInContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// GetUserID returns the authenticated user id, or "" for anonymous requests.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDContextKey).(string)
	return userID
}

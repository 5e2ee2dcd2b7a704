package common

import (
	"context"
)

type contextKey string

const userContextKey contextKey = "user_context"

// UserContext carries the authenticated user's identity through a
// request.
type UserContext struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin reports whether the authenticated user has the admin role.
func (u *UserContext) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// WithUserContext returns a context carrying the user identity.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext extracts the user identity from a context.
// Returns nil when the request was not authenticated.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

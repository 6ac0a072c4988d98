package auth

import (
	"context"
	"errors"
)

// UserContext is the authenticated caller attached to a request
type UserContext struct {
	Identity string
	Email    string
	Roles    []string
}

type contextKey string

const userContextKey contextKey = "auth_user"

// SetUserInContext attaches the authenticated caller to the context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the authenticated caller from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil || user.Identity == "" {
		return nil, errors.New("no authenticated user in context")
	}
	return user, nil
}

package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/inventory-api/auth"
)

// Context key type to avoid collisions
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user
	UserContextKey contextKey = "user_context"

	// AccessTokenKey is the context key for the raw bearer access token
	AccessTokenKey contextKey = "access_token"
)

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// GetUserContextFromContext retrieves the authenticated user from context
func GetUserContextFromContext(ctx context.Context) *auth.UserContext {
	if val := ctx.Value(UserContextKey); val != nil {
		if user, ok := val.(*auth.UserContext); ok {
			return user
		}
	}
	return nil
}

// WithUserContext adds the authenticated user to the context
func WithUserContext(ctx context.Context, user *auth.UserContext) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// GetAccessTokenFromContext retrieves the raw access token from context
func GetAccessTokenFromContext(ctx context.Context) string {
	if val := ctx.Value(AccessTokenKey); val != nil {
		if token, ok := val.(string); ok {
			return token
		}
	}
	return ""
}

// WithAccessToken adds the raw access token to the context
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, AccessTokenKey, token)
}

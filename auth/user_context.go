package auth

import (
	"strings"

	"github.com/upb/inventory-api/cognito"
)

// DefaultRole is assigned when the token carries no custom:userRole claim
const DefaultRole = "user"

// UserContext is the request-scoped identity derived from validated claims.
// It is never persisted.
type UserContext struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`

	// Author mirrors Email for audit attribution
	Author string `json:"author"`
}

// NewUserContext projects claims that already passed ValidateClaims into a UserContext
func NewUserContext(claims *cognito.Claims) *UserContext {
	role := claims.Role
	if role == "" {
		role = DefaultRole
	}

	return &UserContext{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Name:     displayName(claims),
		TenantID: claims.TenantID,
		Role:     role,
		Author:   claims.Email,
	}
}

// displayName prefers the name claim, then given [middle] family, then given, then email
func displayName(claims *cognito.Claims) string {
	if claims.Name != "" {
		return claims.Name
	}

	if claims.GivenName != "" && claims.FamilyName != "" {
		parts := []string{claims.GivenName}
		if claims.MiddleName != "" {
			parts = append(parts, claims.MiddleName)
		}
		parts = append(parts, claims.FamilyName)
		return strings.Join(parts, " ")
	}

	if claims.GivenName != "" {
		return claims.GivenName
	}
	return claims.Email
}

package auth

import (
	"time"

	"github.com/upb/inventory-api/cognito"
)

// ValidateClaims reports whether claims carry a subject, email and tenant and
// expire strictly after the current second.
func ValidateClaims(claims *cognito.Claims) bool {
	return validateClaimsAt(claims, time.Now())
}

func validateClaimsAt(claims *cognito.Claims, now time.Time) bool {
	return hasRequiredAttributes(claims) && !expiredAt(claims, now)
}

func hasRequiredAttributes(claims *cognito.Claims) bool {
	return claims != nil &&
		claims.Subject != "" &&
		claims.Email != "" &&
		claims.TenantID != ""
}

// expiredAt compares whole epoch seconds; a missing exp counts as expired
func expiredAt(claims *cognito.Claims, now time.Time) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Unix() <= now.Unix()
}

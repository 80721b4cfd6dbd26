package auth

import (
	"net/http"
	"strings"
)

const (
	// AuthorizationHeader carries the access token as "Bearer <token>"
	AuthorizationHeader = "Authorization"

	// IDTokenHeader optionally carries the ID token used for display claims
	IDTokenHeader = "X-ID-Token"

	bearerPrefix = "Bearer "
)

// ExtractBearerToken returns the token from a "Bearer <token>" Authorization header.
// The prefix is case-sensitive and the token must have three non-empty dot-separated
// segments. It makes no trust decision.
func ExtractBearerToken(header http.Header) (string, bool) {
	value := header.Get(AuthorizationHeader)
	if !strings.HasPrefix(value, bearerPrefix) {
		return "", false
	}

	token := value[len(bearerPrefix):]
	if !isCompactToken(token) {
		return "", false
	}
	return token, true
}

// isCompactToken reports whether token has exactly three non-empty segments
func isCompactToken(token string) bool {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return false
	}
	for _, segment := range segments {
		if segment == "" {
			return false
		}
	}
	return true
}

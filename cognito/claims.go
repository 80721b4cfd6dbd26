package cognito

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotDecodable is returned when a token payload cannot be structurally decoded
	ErrNotDecodable = errors.New("token payload not decodable")

	// ErrMissingClaim is returned when a required claim is missing
	ErrMissingClaim = errors.New("missing required claim")
)

// Claims represents the claim set carried by a Cognito access or ID token.
// Registered claims (sub, iss, aud, exp, iat) come from the embedded jwt.RegisteredClaims.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Name       string `json:"name,omitempty"`
	TokenUse   string `json:"token_use,omitempty"`
	ClientID   string `json:"client_id,omitempty"`
	Username   string `json:"cognito:username,omitempty"`

	// Custom attributes (tenantId and userRole in the user pool schema)
	TenantID string `json:"custom:tenantId,omitempty"`
	Role     string `json:"custom:userRole,omitempty"`
}

// segmentParser only decodes segments; it never verifies anything.
// Padding is allowed so both padded and raw base64url payloads decode.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodePayload decodes the claim set of a three-segment token without checking its signature.
// The returned claims carry no cryptographic trust.
func DecodePayload(tokenString string) (*Claims, error) {
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrNotDecodable, len(segments))
	}

	payload, err := segmentParser.DecodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64url payload: %v", ErrNotDecodable, err)
	}

	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("%w: invalid payload JSON: %v", ErrNotDecodable, err)
	}

	if err := requireRegistered(claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDecodable, err)
	}

	return claims, nil
}

// requireRegistered checks that sub, exp and iss are present
func requireRegistered(claims *Claims) error {
	switch {
	case claims.Subject == "":
		return fmt.Errorf("%w: sub", ErrMissingClaim)
	case claims.ExpiresAt == nil:
		return fmt.Errorf("%w: exp", ErrMissingClaim)
	case claims.Issuer == "":
		return fmt.Errorf("%w: iss", ErrMissingClaim)
	}
	return nil
}

package cognito

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidIssuer is returned when the token issuer is invalid
	ErrInvalidIssuer = errors.New("invalid issuer")

	// ErrInvalidAudience is returned when the token audience is invalid
	ErrInvalidAudience = errors.New("invalid audience")

	// ErrInvalidTokenUse is returned when the token_use claim does not match the verifier
	ErrInvalidTokenUse = errors.New("invalid token_use")

	// ErrVerifierUnavailable is returned when no verifier can be built for a token use
	ErrVerifierUnavailable = errors.New("verifier unavailable")
)

// TokenUse distinguishes access tokens from ID tokens.
type TokenUse string

const (
	TokenUseAccess TokenUse = "access"
	TokenUseID     TokenUse = "id"
)

// VerificationStatus tags a VerificationOutcome.
type VerificationStatus int

const (
	StatusVerified VerificationStatus = iota
	StatusUnavailable
	StatusRejected
)

func (s VerificationStatus) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusUnavailable:
		return "unavailable"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// VerificationOutcome is the result of a cryptographic verification attempt.
// Claims is set only when Status is StatusVerified; Err explains the other statuses.
type VerificationOutcome struct {
	Status VerificationStatus
	Claims *Claims
	Err    error
}

// Verified returns a successful outcome carrying the verified claims
func Verified(claims *Claims) VerificationOutcome {
	return VerificationOutcome{Status: StatusVerified, Claims: claims}
}

// Unavailable returns an outcome for a verifier that could not be used
func Unavailable(err error) VerificationOutcome {
	return VerificationOutcome{Status: StatusUnavailable, Err: err}
}

// Rejected returns an outcome for a token that failed verification
func Rejected(err error) VerificationOutcome {
	return VerificationOutcome{Status: StatusRejected, Err: err}
}

// KeySource resolves the verification key for a parsed token.
// keyfunc.Keyfunc satisfies it.
type KeySource interface {
	Keyfunc(token *jwt.Token) (any, error)
}

// TokenVerifier verifies tokens of a single token use against a user pool's keys.
// It is safe for concurrent use.
type TokenVerifier struct {
	use      TokenUse
	issuer   string
	clientID string
	keys     KeySource
	parser   *jwt.Parser
}

func newTokenVerifier(use TokenUse, issuer, clientID string, keys KeySource) *TokenVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
	}

	return &TokenVerifier{
		use:      use,
		issuer:   issuer,
		clientID: clientID,
		keys:     keys,
		parser:   jwt.NewParser(opts...),
	}
}

// Use returns the token use this verifier accepts
func (v *TokenVerifier) Use() TokenUse {
	return v.use
}

// Verify checks the token signature, issuer, expiry, token_use and (for ID tokens) audience.
func (v *TokenVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Header["kid"].(string); !ok {
			return nil, errors.New("kid header not found")
		}
		return v.keys.Keyfunc(token)
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidIssuer, v.issuer, claims.Issuer)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenUse != string(v.use) {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrInvalidTokenUse, v.use, claims.TokenUse)
	}

	// ID tokens carry the app client in aud; access tokens carry it in client_id
	if v.use == TokenUseID && !slices.Contains(claims.Audience, v.clientID) {
		return nil, ErrInvalidAudience
	}

	return claims, nil
}

package auth

import "net/http"

// FailureKind classifies why authentication failed
type FailureKind string

const (
	KindMissingToken     FailureKind = "missing_token"
	KindUndecodableToken FailureKind = "undecodable_token"
	KindMissingClaims    FailureKind = "missing_claims"
	KindExpiredToken     FailureKind = "expired_token"
	KindInternal         FailureKind = "internal_error"
)

// Failure messages returned to clients
const (
	MessageMissingToken  = "missing or malformed token"
	MessageInvalidFormat = "invalid token format"
	MessageInvalidClaims = "token missing required attributes or expired"
	MessageInternal      = "internal authentication error"
)

// Success carries the identity of an authenticated request.
// AccessToken is always the token from the Authorization header.
type Success struct {
	User        *UserContext
	AccessToken string
}

// Failure carries the status code and message for a rejected request
type Failure struct {
	StatusCode int
	Message    string
	Kind       FailureKind
}

// Error implements the error interface
func (f *Failure) Error() string {
	return f.Message
}

// Outcome is the result of Pipeline.Authenticate. Exactly one of Success and Failure is set.
type Outcome struct {
	Success *Success
	Failure *Failure
}

// OK reports whether authentication succeeded
func (o Outcome) OK() bool {
	return o.Success != nil
}

func succeeded(user *UserContext, accessToken string) Outcome {
	return Outcome{Success: &Success{User: user, AccessToken: accessToken}}
}

func failed(kind FailureKind) Outcome {
	f := &Failure{Kind: kind, StatusCode: http.StatusUnauthorized}
	switch kind {
	case KindMissingToken:
		f.Message = MessageMissingToken
	case KindUndecodableToken:
		f.Message = MessageInvalidFormat
	case KindMissingClaims, KindExpiredToken:
		f.Message = MessageInvalidClaims
	default:
		f.Kind = KindInternal
		f.StatusCode = http.StatusInternalServerError
		f.Message = MessageInternal
	}
	return Outcome{Failure: f}
}

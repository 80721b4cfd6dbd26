package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthResult is the coarse result of an authentication attempt
type AuthResult string

const (
	AuthResultSuccess AuthResult = "success"
	AuthResultFailure AuthResult = "failure"
)

// AuthEvent records one authentication decision made by the auth guard
type AuthEvent struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	RequestID   string     `json:"request_id" db:"request_id"`
	Result      AuthResult `json:"result" db:"result"`
	FailureKind string     `json:"failure_kind,omitempty" db:"failure_kind"`
	StatusCode  int        `json:"status_code" db:"status_code"`
	UserID      string     `json:"user_id,omitempty" db:"user_id"` // Cognito sub
	TenantID    string     `json:"tenant_id,omitempty" db:"tenant_id"`
	Method      string     `json:"method" db:"method"`
	Path        string     `json:"path" db:"path"`
	IPAddress   string     `json:"ip_address" db:"ip_address"`
	UserAgent   string     `json:"user_agent" db:"user_agent"`
	OccurredAt  time.Time  `json:"occurred_at" db:"occurred_at"`
}

// TableName returns the table name for the AuthEvent model
func (AuthEvent) TableName() string {
	return "auth_events"
}

// NewAuthEvent creates a new AuthEvent stamped with the current time
func NewAuthEvent(result AuthResult, statusCode int) *AuthEvent {
	return &AuthEvent{
		ID:         uuid.New(),
		Result:     result,
		StatusCode: statusCode,
		OccurredAt: time.Now().UTC(),
	}
}

// WithUser sets the authenticated identity
func (e *AuthEvent) WithUser(userID, tenantID string) *AuthEvent {
	e.UserID = userID
	e.TenantID = tenantID
	return e
}

// WithFailure sets the failure kind
func (e *AuthEvent) WithFailure(kind string) *AuthEvent {
	e.FailureKind = kind
	return e
}

// WithRequest sets request metadata
func (e *AuthEvent) WithRequest(requestID, method, path, ipAddress, userAgent string) *AuthEvent {
	e.RequestID = requestID
	e.Method = method
	e.Path = path
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}

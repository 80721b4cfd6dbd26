package models

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewAuthEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewAuthEvent(AuthResultFailure, http.StatusUnauthorized)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, AuthResultFailure, event.Result)
	assert.Equal(t, http.StatusUnauthorized, event.StatusCode)
	assert.False(t, event.OccurredAt.Before(before.Truncate(time.Second)))
	assert.Equal(t, "auth_events", event.TableName())
}

func TestAuthEventBuilders(t *testing.T) {
	event := NewAuthEvent(AuthResultSuccess, http.StatusOK).
		WithUser("user-1", "tenant-1").
		WithRequest("req-1", http.MethodGet, "/api/v1/me", "10.0.0.1", "curl/8.0")

	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "tenant-1", event.TenantID)
	assert.Equal(t, "req-1", event.RequestID)
	assert.Equal(t, http.MethodGet, event.Method)
	assert.Equal(t, "/api/v1/me", event.Path)
	assert.Equal(t, "10.0.0.1", event.IPAddress)
	assert.Equal(t, "curl/8.0", event.UserAgent)
	assert.Empty(t, event.FailureKind)

	event.WithFailure("expired_token")
	assert.Equal(t, "expired_token", event.FailureKind)
}

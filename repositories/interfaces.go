package repositories

import (
	"context"

	"github.com/upb/inventory-api/models"
)

// AuthEventRepository persists the authentication audit trail
type AuthEventRepository interface {
	// Insert stores a single auth event
	Insert(ctx context.Context, event *models.AuthEvent) error

	// ListByUser returns the most recent events for a Cognito sub, newest first
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuthEvent, error)
}

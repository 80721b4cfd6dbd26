package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/upb/inventory-api/models"
	"github.com/upb/inventory-api/repositories"
	"go.uber.org/zap"
)

// maxAuthEventPage caps ListByUser
const maxAuthEventPage = 100

// AuthEventRepository implements the repositories.AuthEventRepository interface
type AuthEventRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuthEventRepository creates a new auth event repository
func NewAuthEventRepository(db *DB, logger *zap.Logger) repositories.AuthEventRepository {
	return &AuthEventRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new auth event
func (r *AuthEventRepository) Insert(ctx context.Context, event *models.AuthEvent) error {
	query := `
		INSERT INTO auth_events (
			id, request_id, result, failure_kind, status_code, user_id, tenant_id,
			method, path, ip_address, user_agent, occurred_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		nullString(event.RequestID),
		event.Result,
		nullString(event.FailureKind),
		event.StatusCode,
		nullString(event.UserID),
		nullString(event.TenantID),
		event.Method,
		event.Path,
		nullString(event.IPAddress),
		nullString(event.UserAgent),
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert auth event: %w", err)
	}

	r.logger.Debug("auth event inserted",
		zap.String("id", event.ID.String()),
		zap.String("result", string(event.Result)))
	return nil
}

// ListByUser retrieves the latest auth events for a user
func (r *AuthEventRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuthEvent, error) {
	if limit <= 0 || limit > maxAuthEventPage {
		limit = maxAuthEventPage
	}

	query := `
		SELECT id, request_id, result, failure_kind, status_code, user_id, tenant_id,
		       method, path, ip_address, user_agent, occurred_at
		FROM auth_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.AuthEvent, 0)
	for rows.Next() {
		var (
			event                                            models.AuthEvent
			requestID, failureKind, user, tenant, ip, agent sql.NullString
		)
		if err := rows.Scan(
			&event.ID,
			&requestID,
			&event.Result,
			&failureKind,
			&event.StatusCode,
			&user,
			&tenant,
			&event.Method,
			&event.Path,
			&ip,
			&agent,
			&event.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan auth event: %w", err)
		}
		event.RequestID = requestID.String
		event.FailureKind = failureKind.String
		event.UserID = user.String
		event.TenantID = tenant.String
		event.IPAddress = ip.String
		event.UserAgent = agent.String
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auth events: %w", err)
	}

	return events, nil
}

// nullString stores empty strings as NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

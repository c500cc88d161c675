package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/models"
)

// AuditLogRepository persists security events in audit_logs
type AuditLogRepository struct {
	db DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Insert appends one entry
func (r *AuditLogRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		entry.UserID, entry.Action, entry.EntityType, entry.EntityID,
		entry.IPAddress, entry.UserAgent, entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}
	return nil
}

// ListByUser returns the most recent events of a user
func (r *AuditLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.AuditLog, error) {
	entries := []models.AuditLog{}
	query := `
		SELECT id, user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}
	return entries, nil
}

// DeleteOlderThan removes entries older than the retention window
func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}
	return result.RowsAffected()
}

// LoginAttemptRepository backs login rate limiting
type LoginAttemptRepository struct {
	db DB
}

// NewLoginAttemptRepository creates a new login attempt repository
func NewLoginAttemptRepository(db DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// CountFailures returns failed attempts since windowStart and the latest one
func (r *LoginAttemptRepository) CountFailures(ctx context.Context, identifier, identifierType string, windowStart time.Time) (int, time.Time, error) {
	var row struct {
		Count int       `db:"count"`
		Last  time.Time `db:"last"`
	}
	query := `
		SELECT COUNT(*) AS count, COALESCE(MAX(attempted_at), NOW()) AS last
		FROM login_attempts
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND success = FALSE
		  AND attempted_at > $3`

	if err := r.db.GetContext(ctx, &row, query, identifier, identifierType, windowStart); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to count login attempts: %w", err)
	}
	return row.Count, row.Last, nil
}

// Record inserts one attempt
func (r *LoginAttemptRepository) Record(ctx context.Context, identifier, identifierType string, success bool) error {
	query := `INSERT INTO login_attempts (identifier, identifier_type, success) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, identifier, identifierType, success); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// ClearFailures forgets failed attempts after a successful login
func (r *LoginAttemptRepository) ClearFailures(ctx context.Context, identifier, identifierType string) error {
	query := `DELETE FROM login_attempts WHERE identifier = $1 AND identifier_type = $2 AND success = FALSE`
	if _, err := r.db.ExecContext(ctx, query, identifier, identifierType); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}
	return nil
}

// DeleteBefore removes attempts older than cutoff
func (r *LoginAttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE attempted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup login attempts: %w", err)
	}
	return result.RowsAffected()
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/utils"
)

// AuditService records security and administrative events in audit_logs
type AuditService struct {
	store   AuditLogStore
	logger  *logrus.Logger
	enabled bool
}

// NewAuditService creates a new audit service. A disabled service drops events.
func NewAuditService(store AuditLogStore, logger *logrus.Logger, enabled bool) *AuditService {
	return &AuditService{
		store:   store,
		logger:  logger,
		enabled: enabled,
	}
}

// AuditEvent represents a security event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID // nil for pre-authentication events
	Action     string     // e.g. "login", "logout", "bookings_deleted"
	EntityType string     // e.g. "user", "booking", "payment"
	EntityID   *uuid.UUID
	Meta       RequestMeta
	Details    map[string]interface{}
}

// LogLogin logs a login attempt
func (s *AuditService) LogLogin(ctx context.Context, userID *uuid.UUID, email string, success bool, reason string, meta RequestMeta) {
	details := map[string]interface{}{
		"email":   email,
		"success": success,
	}
	if reason != "" {
		details["reason"] = reason
	}

	action := "login_failed"
	if success {
		action = "login"
	}

	s.Log(ctx, AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: "user",
		EntityID:   userID,
		Meta:       meta,
		Details:    details,
	})
}

// LogLogout logs a logout event
func (s *AuditService) LogLogout(ctx context.Context, userID uuid.UUID, logoutAll bool, meta RequestMeta) {
	s.Log(ctx, AuditEvent{
		UserID:     &userID,
		Action:     "logout",
		EntityType: "user",
		EntityID:   &userID,
		Meta:       meta,
		Details:    map[string]interface{}{"logout_all": logoutAll},
	})
}

// LogTokenRefresh logs a refresh token usage event
func (s *AuditService) LogTokenRefresh(ctx context.Context, userID uuid.UUID, success bool, meta RequestMeta) {
	action := "token_refresh_success"
	if !success {
		action = "token_refresh_failed"
	}
	s.Log(ctx, AuditEvent{
		UserID:     &userID,
		Action:     action,
		EntityType: "token",
		Meta:       meta,
		Details:    map[string]interface{}{"success": success},
	})
}

// LogRateLimitViolation logs a blocked login
func (s *AuditService) LogRateLimitViolation(ctx context.Context, email, limitType string, retryAfter time.Time, meta RequestMeta) {
	s.Log(ctx, AuditEvent{
		Action:     "rate_limit_violation",
		EntityType: "rate_limit",
		Meta:       meta,
		Details: map[string]interface{}{
			"email":       email,
			"limit_type":  limitType,
			"retry_after": retryAfter,
		},
	})
}

// LogAdminAction logs a privileged mutation such as a bulk delete,
// a payment status override or a refund
func (s *AuditService) LogAdminAction(ctx context.Context, actor Actor, action, entityType string, entityID *uuid.UUID, details map[string]interface{}, meta RequestMeta) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["role"] = actor.Role
	userID := actor.UserID
	s.Log(ctx, AuditEvent{
		UserID:     &userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Meta:       meta,
		Details:    details,
	})
}

// Log writes one event. Failures are logged and never surface to the caller.
func (s *AuditService) Log(ctx context.Context, event AuditEvent) {
	if !s.enabled {
		return
	}
	if event.Details == nil {
		event.Details = map[string]interface{}{}
	}
	event.Details["device_info"] = utils.ParseUserAgent(event.Meta.UserAgent)

	entry := &models.AuditLog{
		Action:     event.Action,
		EntityType: models.NewNullString(event.EntityType),
		IPAddress:  models.NewNullString(event.Meta.IPAddress),
		UserAgent:  models.NewNullString(event.Meta.UserAgent),
		Details:    models.JSONB(event.Details),
	}
	if event.UserID != nil {
		entry.UserID = uuid.NullUUID{UUID: *event.UserID, Valid: true}
	}
	if event.EntityID != nil {
		entry.EntityID = uuid.NullUUID{UUID: *event.EntityID, Valid: true}
	}

	if err := s.store.Insert(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("action", event.Action).Error("Failed to write audit log")
	}
}

// Cleanup removes audit entries older than retention
func (s *AuditService) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteOlderThan(ctx, retention)
}

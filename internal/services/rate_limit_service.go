package services

import (
	"context"
	"fmt"
	"time"

	"github.com/voyagehub/travel-backend/internal/config"
)

// RateLimitService limits failed logins per email and per client IP
type RateLimitService struct {
	attempts LoginAttemptStore
	config   config.RateLimitConfig
	now      func() time.Time
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(attempts LoginAttemptStore, cfg config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		attempts: attempts,
		config:   cfg,
		now:      time.Now,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (s *RateLimitService) window() time.Duration {
	return time.Duration(s.config.WindowMinutes) * time.Minute
}

// CheckLoginRateLimit fails with *RateLimitError when either the email or
// the IP has too many recent failures
func (s *RateLimitService) CheckLoginRateLimit(ctx context.Context, email, ip string) error {
	windowStart := s.now().Add(-s.window())

	if email != "" {
		count, last, err := s.attempts.CountFailures(ctx, email, "email", windowStart)
		if err != nil {
			return fmt.Errorf("failed to check email rate limit: %w", err)
		}
		if count >= s.config.MaxAttemptsPerEmail {
			retryAfter := last.Add(s.window())
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts for this account. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "email",
			}
		}
	}

	if ip != "" {
		count, last, err := s.attempts.CountFailures(ctx, ip, "ip", windowStart)
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}
		if count >= s.config.MaxAttemptsPerIP {
			retryAfter := last.Add(s.window())
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts from this IP address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}

// RecordLoginAttempt records the outcome for both identifiers. A success
// clears earlier failures of the account.
func (s *RateLimitService) RecordLoginAttempt(ctx context.Context, email, ip string, success bool) error {
	if email != "" {
		if err := s.attempts.Record(ctx, email, "email", success); err != nil {
			return fmt.Errorf("failed to record email attempt: %w", err)
		}
		if success {
			if err := s.attempts.ClearFailures(ctx, email, "email"); err != nil {
				return err
			}
		}
	}
	if ip != "" {
		if err := s.attempts.Record(ctx, ip, "ip", success); err != nil {
			return fmt.Errorf("failed to record IP attempt: %w", err)
		}
	}
	return nil
}

// CleanupExpired removes attempts older than the window
func (s *RateLimitService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.attempts.DeleteBefore(ctx, s.now().Add(-s.window()))
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/config"
)

// jobTimeout bounds one run of any scheduled job
const jobTimeout = 2 * time.Minute

// CronService manages scheduled background jobs
type CronService struct {
	cron          *cron.Cron
	payments      *PaymentService
	refreshTokens RefreshTokenStore
	rateLimiter   *RateLimitService
	audit         *AuditService
	config        config.CronConfig
	logger        *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(
	payments *PaymentService,
	refreshTokens RefreshTokenStore,
	rateLimiter *RateLimitService,
	audit *AuditService,
	cfg config.CronConfig,
	logger *logrus.Logger,
) *CronService {
	return &CronService{
		cron:          cron.New(cron.WithSeconds()),
		payments:      payments,
		refreshTokens: refreshTokens,
		rateLimiter:   rateLimiter,
		audit:         audit,
		config:        cfg,
		logger:        logger,
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	// Cron format: second minute hour day month weekday
	if _, err := s.cron.AddFunc(s.config.ReconcileSchedule, s.reconcilePaymentsJob); err != nil {
		return fmt.Errorf("failed to schedule payment reconciliation job: %w", err)
	}
	s.logger.WithField("schedule", s.config.ReconcileSchedule).Info("Scheduled: Reconcile pending payments")

	if _, err := s.cron.AddFunc(s.config.CleanupSchedule, s.cleanupJob); err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.logger.WithField("schedule", s.config.CleanupSchedule).Info("Scheduled: Cleanup expired tokens, login attempts and audit logs")

	s.cron.Start()
	s.logger.Info("Cron service started successfully")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// reconcilePaymentsJob verifies PENDING payments the gateway never reported back on
func (s *CronService) reconcilePaymentsJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	startTime := time.Now()
	settled, err := s.payments.Reconcile(ctx, s.config.ReconcileAfter, s.config.ReconcileBatch)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to reconcile pending payments")
		return
	}
	if settled > 0 {
		s.logger.WithFields(logrus.Fields{
			"settled":  settled,
			"duration": time.Since(startTime).String(),
		}).Info("[CRON] Reconciled pending payments")
	}
}

// cleanupJob removes expired refresh tokens, stale login attempts and old audit logs
func (s *CronService) cleanupJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	startTime := time.Now()
	fields := logrus.Fields{}

	if n, err := s.refreshTokens.DeleteExpired(ctx); err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to delete expired refresh tokens")
	} else {
		fields["refresh_tokens"] = n
	}
	if n, err := s.rateLimiter.CleanupExpired(ctx); err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to delete old login attempts")
	} else {
		fields["login_attempts"] = n
	}
	if s.config.AuditRetention > 0 {
		if n, err := s.audit.Cleanup(ctx, s.config.AuditRetention); err != nil {
			s.logger.WithError(err).Error("[CRON] Failed to delete old audit logs")
		} else {
			fields["audit_logs"] = n
		}
	}

	fields["duration"] = time.Since(startTime).String()
	s.logger.WithFields(fields).Info("[CRON] Cleanup finished")
}

// RunReconcileNow runs the payment reconciliation job immediately
func (s *CronService) RunReconcileNow() {
	s.logger.Info("[MANUAL] Running payment reconciliation now...")
	s.reconcilePaymentsJob()
}

// RunCleanupNow runs the cleanup job immediately
func (s *CronService) RunCleanupNow() {
	s.logger.Info("[MANUAL] Running cleanup now...")
	s.cleanupJob()
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}

package reminder

import (
	"context"
	"fmt"
	"time"

	"go-payables/internal/config"
	"go-payables/internal/features/approval"
	"go-payables/internal/features/ledger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderService runs the periodic background sweeps: nudging approvers
// sitting on stale pending steps and pushing approved payables into the
// external ledger.
type ReminderService interface {
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error

	// RunOnce triggers one sweep immediately, outside the schedule
	RunOnce(ctx context.Context) (int, error)
}

type ReminderServiceImpl struct {
	Config    *config.Config
	Approvals approval.ApprovalService
	Ledger    ledger.LedgerService
	Logger    *zap.Logger

	scheduler *cron.Cron
}

func NewReminderService(
	cfg *config.Config,
	approvals approval.ApprovalService,
	ledgerService ledger.LedgerService,
	logger *zap.Logger,
) ReminderService {
	return &ReminderServiceImpl{
		Config:    cfg,
		Approvals: approvals,
		Ledger:    ledgerService,
		Logger:    logger,
	}
}

func (s *ReminderServiceImpl) InitializeScheduler(ctx context.Context) error {
	if _, err := cron.ParseStandard(s.Config.ReminderCronSpec); err != nil {
		return fmt.Errorf("invalid reminder cron expression %q: %w", s.Config.ReminderCronSpec, err)
	}

	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(s.Config.ReminderCronSpec, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}

	s.scheduler.Start()
	s.Logger.Info("reminder scheduler started",
		zap.String("schedule", s.Config.ReminderCronSpec),
		zap.Int("afterHours", s.Config.ReminderAfterHours))
	return nil
}

func (s *ReminderServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

func (s *ReminderServiceImpl) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.Logger.Warn("reminder sweep failed", zap.Error(err))
	}
}

func (s *ReminderServiceImpl) RunOnce(ctx context.Context) (int, error) {
	olderThan := time.Duration(s.Config.ReminderAfterHours) * time.Hour

	reminded, err := s.Approvals.RemindStalePending(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	if reminded > 0 {
		s.Logger.Info("sent approval reminders", zap.Int("count", reminded))
	}

	if s.Config.LedgerPostgresDSN != "" {
		exported, err := s.Ledger.Export(ctx, "")
		if err != nil {
			s.Logger.Warn("scheduled ledger export failed", zap.Error(err))
		} else if exported > 0 {
			s.Logger.Info("exported payables to ledger", zap.Int("count", exported))
		}
	}

	return reminded, nil
}

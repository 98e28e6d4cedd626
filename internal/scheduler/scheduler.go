package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/config"
	"github.com/alrehman/poultrybooks/internal/domain/models"
	"github.com/alrehman/poultrybooks/internal/repository/sheets"
	"github.com/alrehman/poultrybooks/internal/service/commands"
	"github.com/alrehman/poultrybooks/internal/service/ledger"
	"github.com/alrehman/poultrybooks/internal/service/messaging"
)

// Scheduler manages the recurring jobs: the daily summary message and the
// nightly spreadsheet mirror. Both jobs are optional and skipped when their
// collaborators are absent.
type Scheduler struct {
	cron       *cron.Cron
	books      *ledger.Service
	dispatcher commands.Dispatcher
	messaging  messaging.MessagingService
	mirror     *sheets.StateMirror
	cfg        config.Config
	logger     *zap.Logger
}

// NewScheduler creates a scheduler in the configured timezone. An invalid
// timezone falls back to the host's local time.
func NewScheduler(cfg config.Config, books *ledger.Service, dispatcher commands.Dispatcher, messagingSvc messaging.MessagingService, mirror *sheets.StateMirror, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []cron.Option{}
	if loc, err := time.LoadLocation(cfg.Reporting.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("unknown timezone, using local time", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	return &Scheduler{
		cron:       cron.New(opts...),
		books:      books,
		dispatcher: dispatcher,
		messaging:  messagingSvc,
		mirror:     mirror,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers the jobs and launches the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	if s.messaging != nil && s.dispatcher != nil && s.cfg.WhatsApp.OwnerNumber != "" {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendDailySummary); err != nil {
			s.logger.Error("failed to schedule daily summary", zap.Error(err))
		}
	} else {
		s.logger.Info("daily summary disabled, messaging not configured")
	}

	if s.mirror != nil {
		// Mirror after the books have settled for the day.
		if _, err := s.cron.AddFunc("30 23 * * *", s.mirrorBooks); err != nil {
			s.logger.Error("failed to schedule spreadsheet mirror", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the cron loop. Running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendDailySummary() {
	s.logger.Info("generating daily summary")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	owner := s.cfg.WhatsApp.OwnerNumber

	summary, err := s.dispatcher.HandleCommand(ctx, models.ParseCommand("/summary"), owner)
	if err != nil {
		s.logger.Error("failed to build daily summary", zap.Error(err))
		return
	}
	dues, err := s.dispatcher.HandleCommand(ctx, models.ParseCommand("/dues"), owner)
	if err != nil {
		s.logger.Error("failed to build dues digest", zap.Error(err))
		return
	}

	req := models.OutboundMessageRequest{
		To:      owner,
		Message: summary + "\n\n" + dues,
	}
	if err := s.messaging.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send daily summary", zap.Error(err))
		return
	}
	s.logger.Info("daily summary sent")
}

func (s *Scheduler) mirrorBooks() {
	s.logger.Info("mirroring books to spreadsheet")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.mirror.Mirror(ctx, s.books.Snapshot()); err != nil {
		s.logger.Error("spreadsheet mirror failed", zap.Error(err))
		return
	}
	s.logger.Info("spreadsheet mirror complete")
}

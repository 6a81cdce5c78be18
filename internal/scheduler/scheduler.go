package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/config"
	"github.com/mamadbah2/proporco/internal/domain/models"
)

// AccountLister returns the accounts subscribed to the weekly digest.
type AccountLister interface {
	DigestAccounts(ctx context.Context) ([]models.Account, error)
}

// Publisher builds and records the weekly digest for an account.
type Publisher interface {
	PublishWeekly(ctx context.Context, account models.Account) (string, error)
}

// Sender delivers a text message.
type Sender interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	accounts  AccountLister
	publisher Publisher
	sender    Sender
	logger    *zap.Logger
}

// NewScheduler creates a scheduler running the weekly digest on cfg.CronSchedule
// in cfg.Timezone. sender may be nil, in which case digests are only archived.
func NewScheduler(cfg config.ReportingConfig, accounts AccountLister, publisher Publisher, sender Sender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		schedule:  cfg.CronSchedule,
		accounts:  accounts,
		publisher: publisher,
		sender:    sender,
		logger:    logger,
	}, nil
}

// Start registers the weekly digest and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sendWeeklyReports); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyReports() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if sent := s.RunWeekly(ctx); sent > 0 {
		s.logger.Info("weekly reports sent", zap.Int("count", sent))
	}
}

// RunWeekly publishes the digest for every subscribed account and returns how
// many were delivered. One account failing does not stop the others.
func (s *Scheduler) RunWeekly(ctx context.Context) int {
	s.logger.Info("generating weekly reports")

	accounts, err := s.accounts.DigestAccounts(ctx)
	if err != nil {
		s.logger.Error("failed to list digest accounts", zap.Error(err))
		return 0
	}

	var sent int
	for _, account := range accounts {
		report, err := s.publisher.PublishWeekly(ctx, account)
		if err != nil {
			s.logger.Error("failed to generate weekly report", zap.String("account_id", account.ID), zap.Error(err))
			continue
		}
		if s.sender == nil || account.WhatsAppNumber == "" {
			continue
		}

		req := models.OutboundMessageRequest{
			To:      account.WhatsAppNumber,
			Message: report,
		}
		if err := s.sender.SendOutbound(ctx, req); err != nil {
			s.logger.Error("failed to send weekly report", zap.String("account_id", account.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type Reporter interface {
	GetDailyReport(ctx context.Context) (string, error)
}

type Config struct {
	Location    *time.Location
	RefreshCron string
	ReportCron  string
}

type Scheduler struct {
	s           gocron.Scheduler
	cfg         Config
	refresh     func(context.Context) error
	reporter    Reporter
	sendMessage func(string) error
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewScheduler runs the stats refresh and the daily report on their cron
// schedules. A nil reporter or sendMessage disables the report job.
func NewScheduler(cfg Config, refresh func(context.Context) error, reporter Reporter, sendMessage func(string) error) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(cfg.Location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		s:           s,
		cfg:         cfg,
		refresh:     refresh,
		reporter:    reporter,
		sendMessage: sendMessage,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func (s *Scheduler) Start() error {
	var err error

	if s.cfg.RefreshCron != "" && s.refresh != nil {
		_, err = s.s.NewJob(
			gocron.CronJob(s.cfg.RefreshCron, false),
			gocron.NewTask(s.runRefresh),
			gocron.WithName("stats-refresh"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create refresh job: %w", err)
		}
	}

	if s.cfg.ReportCron != "" && s.reporter != nil && s.sendMessage != nil {
		_, err = s.s.NewJob(
			gocron.CronJob(s.cfg.ReportCron, false),
			gocron.NewTask(s.sendDailyReport),
			gocron.WithName("daily-report"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create daily report job: %w", err)
		}
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Jobs() []string {
	var names []string
	for _, j := range s.s.Jobs() {
		names = append(names, j.Name())
	}
	return names
}

func (s *Scheduler) Stop() error {
	s.cancel()
	return s.s.Shutdown()
}

func (s *Scheduler) runRefresh() {
	if err := s.refresh(s.ctx); err != nil {
		slog.Error("Scheduled refresh failed", "error", err)
	}
}

func (s *Scheduler) sendDailyReport() {
	report, err := s.reporter.GetDailyReport(s.ctx)
	if err != nil {
		slog.Error("Failed to build daily report", "error", err)
		return
	}
	if err := s.sendMessage(report); err != nil {
		slog.Error("Failed to send daily report", "error", err)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yonasstephen/shams-sub000/internal/bot"
	"github.com/yonasstephen/shams-sub000/internal/scheduler"
	"github.com/yonasstephen/shams-sub000/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.refresher.Load(ctx); err != nil {
		return err
	}
	if !a.repo.HasData() {
		go func() {
			if _, err := a.refresher.Refresh(ctx, true); err != nil {
				logger.Error("Initial stats refresh failed", "error", err)
			}
		}()
	}

	var sendMessage func(string) error
	if a.cfg.TelegramBot.Token != "" {
		handler := bot.NewHandler(a.service, a.refresher)
		telegramBot, err := bot.NewTelegramBot(a.cfg.TelegramBot.Token, a.cfg.TelegramBot.ChatID, handler)
		if err != nil {
			return err
		}
		sendMessage = telegramBot.SendMessage
		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				logger.Error("Error running telegram bot", "error", err)
			}
		}()
	} else {
		logger.Warn("TELEGRAM_TOKEN not set, bot and daily report disabled")
	}

	sched, err := scheduler.NewScheduler(scheduler.Config{
		Location:    a.location,
		RefreshCron: a.cfg.Schedule.RefreshCron,
		ReportCron:  a.cfg.Schedule.ReportCron,
	}, func(ctx context.Context) error {
		_, err := a.refresher.Refresh(ctx, false)
		return err
	}, a.service, sendMessage)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Error("Error stopping scheduler", "error", err)
		}
	}()

	router := server.NewRouter(server.NewHandler(a.service, a.service, a.repo), server.Config{
		Addr:              a.cfg.Server.Addr,
		CORSAllowOrigins:  a.cfg.Server.CORSAllowOrigins,
		RateLimitRequests: a.cfg.Server.RateLimitRequests,
		RateLimitWindow:   a.cfg.Server.RateLimitWindow,
	})
	err = server.ListenAndServe(ctx, router, a.cfg.Server.Addr)
	logger.Info("Shutting down gracefully...")
	return err
}

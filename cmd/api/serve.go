package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dbadapter "sailclub/internal/adapter/db"
	httpadapter "sailclub/internal/adapter/http"
	"sailclub/internal/adapter/http/handlers"
	httpmiddleware "sailclub/internal/adapter/http/middleware"
	"sailclub/internal/adapter/notify"
	"sailclub/internal/app/events"
	"sailclub/internal/app/scheduler"
	"sailclub/internal/app/service"
	"sailclub/internal/config"
	"sailclub/pkg/clock"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before starting")
	return cmd
}

func runServe(migrate bool) error {
	logger := zap.L()
	cfg := config.LoadConfig()
	initTranslator(cfg.TranslationFolder)

	db, err := dbadapter.ConnectDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to mysql: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close mysql connection", zap.Error(err))
		}
	}()

	if migrate {
		if err := dbadapter.MigrateUp(db); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskRepository := dbadapter.NewTaskRepository(db)
	memberRepository := dbadapter.NewMemberRepository(db)
	notifier := notify.NewNotifier(notify.NewMailer(cfg.Smtp), cfg.Reminder.Location)

	bus := events.NewBus(
		events.Config{QueueSize: cfg.Events.QueueSize, MaxAttempts: cfg.Events.MaxAttempts},
		events.NewAuditHandler(dbadapter.NewAuditRepository(db)),
		events.NewNotifyHandler(notifier),
	)
	bus.Start(ctx)

	clk := clock.RealClock{}
	taskService := service.NewTaskService(taskRepository, memberRepository, bus, clk)
	reminderService := service.NewReminderService(taskRepository, notifier, dbadapter.NewJobLocker(db), clk, cfg.Reminder.SendTimeout, cfg.Reminder.Location)

	reminders, err := newReminderScheduler(cfg.Reminder, func(ctx context.Context) {
		if _, err := reminderService.Run(ctx); err != nil {
			logger.Error("reminder job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to configure reminder scheduler: %w", err)
	}
	var schedule handlers.ReminderSchedule
	if reminders != nil {
		reminders.Start()
		schedule = reminders
		logger.Info("reminder scheduler started", zap.Time("next_run", reminders.Next(clk.Now())))
	} else {
		logger.Info("reminder scheduler disabled")
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), httpmiddleware.GinZapMiddleware(logger))
	httpadapter.RegisterRoutes(
		r,
		handlers.NewHealthHandler(db, schedule),
		handlers.NewTaskHandler(taskService),
		httpmiddleware.AuthMiddleware(memberRepository),
	)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	server := &http.Server{Addr: ":" + port, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("could not start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shut down http server", zap.Error(err))
	}
	if reminders != nil {
		if err := reminders.Stop(shutdownCtx); err != nil {
			logger.Warn("reminder job did not stop in time", zap.Error(err))
		}
	}
	if err := bus.Close(shutdownCtx); err != nil {
		logger.Warn("event queue not drained", zap.Error(err))
	}
	return nil
}

// newReminderScheduler returns nil when no reminder schedule is configured.
func newReminderScheduler(cfg config.ReminderConfig, job func(ctx context.Context)) (*scheduler.Scheduler, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	return scheduler.New(scheduler.Config{
		Cron:     cfg.Cron,
		Interval: cfg.Interval,
		Location: cfg.Location,
	}, "reminders", job)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tonynouhra/taskmanager/internal/config"
	"github.com/tonynouhra/taskmanager/internal/database"
	"github.com/tonynouhra/taskmanager/internal/handler"
	"github.com/tonynouhra/taskmanager/internal/logger"
	"github.com/tonynouhra/taskmanager/internal/middleware"
	"github.com/tonynouhra/taskmanager/internal/notify"
	"github.com/tonynouhra/taskmanager/internal/repository"
	"github.com/tonynouhra/taskmanager/internal/scheduler"
	"github.com/tonynouhra/taskmanager/internal/service"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "taskmanager",
		Usage: "Project tracking backend with status change notifications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "smtp-host",
				Usage:   "SMTP host for notification emails (empty logs instead of sending)",
				EnvVars: []string{"SMTP_HOST"},
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Value:   config.DefaultSMTPPort,
				Usage:   "SMTP submission port",
				EnvVars: []string{"SMTP_PORT"},
			},
			&cli.StringFlag{
				Name:    "smtp-username",
				Usage:   "SMTP username (empty disables authentication)",
				EnvVars: []string{"SMTP_USERNAME"},
			},
			&cli.StringFlag{
				Name:    "smtp-password",
				Usage:   "SMTP password",
				EnvVars: []string{"SMTP_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "mail-from",
				Value:   config.DefaultMailFrom,
				Usage:   "Sender address for notification emails",
				EnvVars: []string{"MAIL_FROM"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:     "jwt-secret",
						Usage:    "HS256 signing secret for API tokens",
						EnvVars:  []string{"JWT_SECRET"},
						Required: true,
					},
					&cli.IntFlag{
						Name:    "notification-workers",
						Value:   config.DefaultWorkers,
						Usage:   "Notification worker pool size",
						EnvVars: []string{"NOTIFICATION_WORKERS"},
					},
					&cli.IntFlag{
						Name:    "notification-queue-size",
						Value:   config.DefaultQueueSize,
						Usage:   "Notification queue buffer size",
						EnvVars: []string{"NOTIFICATION_QUEUE_SIZE"},
					},
					&cli.StringFlag{
						Name:    "reminder-schedule",
						Value:   config.DefaultReminderSchedule,
						Usage:   "Cron schedule for the overdue reminder scan",
						EnvVars: []string{"REMINDER_SCHEDULE"},
					},
				},
				Action: runServe,
			},
			{
				Name:   "remind-overdue",
				Usage:  "Run the overdue reminder scan once and exit",
				Action: runRemindOverdue,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// buildMailer picks the SMTP transport, or the log fallback when no host
// is configured.
func buildMailer(c *cli.Context) notify.Mailer {
	host := c.String("smtp-host")
	if host == "" {
		slog.Warn("no SMTP host configured, notification emails will be logged only")
		return notify.LogMailer{}
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     host,
		Port:     c.Int("smtp-port"),
		Username: c.String("smtp-username"),
		Password: c.String("smtp-password"),
		From:     c.String("mail-from"),
	})
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Notification pipeline: directory -> notifier -> worker pool.
	epicRepo := repository.NewEpicRepository(db.Pool())
	storyRepo := repository.NewStoryRepository(db.Pool())
	taskRepo := repository.NewTaskRepository(db.Pool())
	directory := repository.NewWorkItemDirectory(db.Pool(), epicRepo, storyRepo, taskRepo)

	notifier := notify.NewNotifier(directory, buildMailer(c))
	pool := notify.NewWorkerPool(notifier, c.Int("notification-workers"), c.Int("notification-queue-size"))
	pool.Start(ctx)

	tokens := middleware.NewTokenManager(c.String("jwt-secret"))
	h := handler.New(db.Pool(), tokens, pool)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Daily overdue reminder scan.
	reminders := service.NewReminderService(taskRepo, pool)
	sched, err := scheduler.New([]scheduler.JobSpec{
		{
			Name:     "overdue-reminders",
			Schedule: c.String("reminder-schedule"),
			Run: func(ctx context.Context) error {
				_, err := reminders.RemindOverdue(ctx)
				return err
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}
	sched.Start()

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		sched.Stop()
		pool.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop scheduling new work, then drain the queued notifications.
	sched.Stop()
	pool.Stop()

	slog.Info("server stopped")
	return nil
}

func runRemindOverdue(c *cli.Context) error {
	ctx := c.Context

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	epicRepo := repository.NewEpicRepository(db.Pool())
	storyRepo := repository.NewStoryRepository(db.Pool())
	taskRepo := repository.NewTaskRepository(db.Pool())
	directory := repository.NewWorkItemDirectory(db.Pool(), epicRepo, storyRepo, taskRepo)

	notifier := notify.NewNotifier(directory, buildMailer(c))
	queue := &notify.SyncQueue{Handler: notifier}
	reminders := service.NewReminderService(taskRepo, queue)

	count, err := reminders.RemindOverdue(ctx)
	if err != nil {
		return fmt.Errorf("reminder scan failed: %w", err)
	}

	slog.Info("reminder scan complete", "reminders_sent", count)
	return nil
}

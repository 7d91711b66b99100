package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	dbadapter "sailclub/internal/adapter/db"
	"sailclub/internal/adapter/notify"
	"sailclub/internal/app/service"
	"sailclub/internal/config"
	"sailclub/pkg/clock"
)

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send due task reminders once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			initTranslator(cfg.TranslationFolder)

			return withDatabase(cfg, func(db *sqlx.DB) error {
				notifier := notify.NewNotifier(notify.NewMailer(cfg.Smtp), cfg.Reminder.Location)
				reminders := service.NewReminderService(
					dbadapter.NewTaskRepository(db),
					notifier,
					dbadapter.NewJobLocker(db),
					clock.RealClock{},
					cfg.Reminder.SendTimeout,
					cfg.Reminder.Location,
				)

				report, err := reminders.Run(context.Background())
				if errors.Is(err, service.ErrReminderJobRunning) {
					fmt.Fprintln(cmd.OutOrStdout(), "another reminder run is in progress, skipping")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "upcoming: %d overdue: %d failed: %d skipped: %d\n",
					report.Upcoming, report.Overdue, report.Failed, report.Skipped)
				return nil
			})
		},
	}
}

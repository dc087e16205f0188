package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ManuscriptTracker/internal/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Repeat tracking passes on the configured interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, logger, cleanup, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		defer recoverFatal(logger, &err)

		return application.Watch(ctx, func(report domain.RunReport) {
			logger.Info("pass finished",
				"records", len(report.Records()),
				"failed", report.Count(domain.StateFailed),
				"delivered", report.Delivered,
			)
		})
	},
}

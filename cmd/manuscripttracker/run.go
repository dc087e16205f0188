package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ManuscriptTracker/internal/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one tracking pass over every account",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		application, logger, cleanup, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		defer recoverFatal(logger, &err)

		logger.Info("manuscript tracker starting")
		report := application.Run(cmd.Context())
		writeSummary(os.Stdout, report)
		return nil
	},
}

// writeSummary prints one row per manuscript and a footer per account state.
func writeSummary(w io.Writer, report domain.RunReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Journal", "Number", "Status", "Status Date", "Captured"})

	for _, rec := range report.Records() {
		t.AppendRow(table.Row{
			rec.Journal,
			rec.ManuscriptNumber,
			rec.CurrentStatus,
			rec.StatusDate,
			rec.CapturedAt.Format("2006-01-02 15:04"),
		})
	}

	t.AppendFooter(table.Row{
		"accounts", len(report.Results),
		"done " + strconv.Itoa(report.Count(domain.StateDone)),
		"skipped " + strconv.Itoa(report.Count(domain.StateSkipped)),
		"failed " + strconv.Itoa(report.Count(domain.StateFailed)),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

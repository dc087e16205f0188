package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ManuscriptTracker/internal/domain"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List configured accounts without contacting the portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		writeAccounts(os.Stdout, cfg.Accounts)
		return nil
	},
}

func writeAccounts(w io.Writer, accounts []domain.Account) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Journal", "Name", "Username", "Placeholder"})
	for i, a := range accounts {
		t.AppendRow(table.Row{i + 1, a.ShortName, a.FullName, a.Username, a.IsPlaceholder()})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

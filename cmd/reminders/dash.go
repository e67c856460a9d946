package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/notexe/reminder-dash/internal/dashboard"
	"github.com/notexe/reminder-dash/internal/repl"
)

var dashCmd = &cobra.Command{
	Use:     "dash",
	Aliases: []string{"ui"},
	Short:   "Open the interactive dashboard",
	Args:    cobra.NoArgs,
	RunE:    runDash,
}

func init() {
	rootCmd.AddCommand(dashCmd)
}

// runDash opens the dashboard. Without a log file, logs are dropped so they
// cannot corrupt the screen.
func runDash(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd, io.Discard)
	if err != nil {
		return err
	}

	opts, err := dashboardOptions(e.cfg, e.log)
	if err != nil {
		return err
	}
	ctrl := dashboard.New(e.client, opts)
	defer ctrl.Close()

	r, err := repl.NewREPL(ctrl, e.client, e.cfg, e.log)
	if err != nil {
		return fmt.Errorf("creating dashboard: %w", err)
	}

	e.log.WithField("base_url", e.cfg.API.BaseURL).Info("dashboard started")
	return r.Start(cmd.Context())
}

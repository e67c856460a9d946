// Command reminders is a terminal dashboard and one-shot CLI for the
// reminder service.
//
// Usage:
//
//	reminders                      # interactive dashboard
//	reminders list --tab completed # print one page
//	reminders add "Pay rent" --due "2025-02-01 09:00" --priority high
//	reminders done 42
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/notexe/reminder-dash/internal/api"
	"github.com/notexe/reminder-dash/internal/config"
	"github.com/notexe/reminder-dash/internal/dashboard"
	"github.com/notexe/reminder-dash/internal/logging"
	"github.com/notexe/reminder-dash/internal/reminder"
	"github.com/notexe/reminder-dash/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "reminders",
	Short:         "Browse and manage reminders",
	Long:          "Without a subcommand, opens the interactive dashboard.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDash,
}

var (
	configPath string
	baseURL    string
	noColor    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetDefaultConfigPath(), "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Reminder API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w (see %s --help)", err, cmd.CommandPath())
	})

	cobra.OnFinalize(func() {
		if app != nil {
			app.close()
		}
	})
}

// env is what every subcommand needs once configuration is loaded.
type env struct {
	cfg       *config.Config
	log       *logrus.Logger
	client    *api.Client
	formatter *ui.Formatter
	closeLog  func() error
}

var app *env

// setup loads configuration, applies flag overrides and builds the client.
// Logs go to the configured file, or to logOut when none is set.
func setup(cmd *cobra.Command, logOut io.Writer) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if noColor || !isTerminal(cmd.OutOrStdout()) {
		cfg.UI.ColoredOutput = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, closeLog, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	width := cfg.UI.Width
	if width <= 0 {
		width = ui.TerminalWidth()
	}

	app = &env{
		cfg:    cfg,
		log:    log,
		client: api.NewClient(cfg.API.BaseURL, cfg.API.TimeoutDuration(), log),
		formatter: ui.NewFormatter(ui.Options{
			Colored: cfg.UI.ColoredOutput,
			ShowIDs: cfg.UI.ShowIDs,
			Width:   width,
		}),
		closeLog: closeLog,
	}
	return app, nil
}

func (e *env) close() {
	if err := e.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
	}
}

// dashboardOptions maps the list and notify settings onto the controller.
func dashboardOptions(cfg *config.Config, log logrus.FieldLogger) (dashboard.Options, error) {
	sort, err := reminder.ParseSort(cfg.List.Sort)
	if err != nil {
		return dashboard.Options{}, err
	}
	layout, ok := dashboard.ParseLayout(cfg.List.Layout)
	if !ok {
		return dashboard.Options{}, fmt.Errorf("unknown layout %q", cfg.List.Layout)
	}
	return dashboard.Options{
		PageSize:      cfg.List.PageSize,
		Debounce:      cfg.List.Debounce(),
		Sort:          sort,
		NotifyTimeout: cfg.Notify.Timeout(),
		Layout:        layout,
		Logger:        log,
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// describe turns API failures into one readable line.
func describe(err error) error {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return errors.New(se.Message)
	}
	return err
}

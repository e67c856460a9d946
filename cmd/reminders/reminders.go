package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notexe/reminder-dash/internal/reminder"
	"github.com/notexe/reminder-dash/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print one page of reminders",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var (
	listTab      string
	listSearch   string
	listPriority string
	listPage     int
	listAll      bool
	listJSON     bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one reminder with its full description",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var showJSON bool

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a reminder",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var (
	addDue         string
	addDescription string
	addPriority    string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a reminder; omitted fields keep their value",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var (
	editTitle       string
	editDescription string
	editDue         string
	editPriority    string
)

var doneCmd = &cobra.Command{
	Use:     "done <id>...",
	Aliases: []string{"complete"},
	Short:   "Mark reminders as completed",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDone,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Delete reminders permanently",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRm,
}

var rmYes bool

func init() {
	rootCmd.AddCommand(listCmd, showCmd, addCmd, editCmd, doneCmd, rmCmd)

	listCmd.Flags().StringVarP(&listTab, "tab", "t", "active", "Tab to list (active, completed)")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only titles containing this text")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Filter by priority (low, medium, high)")
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Ignore --tab and group by today, upcoming and completed")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")

	addCmd.Flags().StringVar(&addDue, "due", "", "Due date, e.g. \"2025-01-15 09:00\"")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Description (markdown)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "medium", "Priority (low, medium, high)")
	_ = addCmd.MarkFlagRequired("due")

	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	editCmd.Flags().StringVar(&editDue, "due", "", "New due date")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "New priority")

	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "Do not ask for confirmation")
}

func runList(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	sort, err := reminder.ParseSort(e.cfg.List.Sort)
	if err != nil {
		return err
	}
	q := reminder.Query{
		Page:     listPage,
		PageSize: e.cfg.List.PageSize,
		Sort:     sort,
		Title:    strings.TrimSpace(listSearch),
	}
	if q.Page < 1 {
		return fmt.Errorf("--page must be at least 1")
	}
	if q.Priority, err = reminder.ParsePriority(listPriority); err != nil {
		return err
	}
	tab, err := reminder.ParseTab(listTab)
	if err != nil {
		return err
	}
	if !listAll {
		q.Completed = reminder.CompletedFilter(tab == reminder.TabCompleted)
	}

	var page *reminder.Page
	err = e.busy(cmd, "Loading reminders...", func(ctx context.Context) error {
		page, err = e.client.List(ctx, q)
		return err
	})
	if err != nil {
		return describe(err)
	}

	out := cmd.OutOrStdout()
	if listJSON {
		return writeJSON(out, page)
	}

	f := e.formatter
	if len(page.Items) == 0 {
		fmt.Fprintln(out, f.FormatSystem("No reminders found."))
		return nil
	}

	if listAll {
		for _, g := range reminder.Classify(f.Now(), page.Items).Ordered() {
			fmt.Fprintln(out, f.FormatGroupHeader(g.Name, len(g.Items)))
			printCards(out, f, g.Items)
		}
	} else {
		fmt.Fprintln(out, f.FormatTabs(tab))
		fmt.Fprintln(out)
		printCards(out, f, page.Items)
	}
	fmt.Fprintln(out, f.FormatPagination(q.Page, page.TotalPages, page.Total))
	return nil
}

func printCards(out io.Writer, f *ui.Formatter, items []reminder.Reminder) {
	for _, r := range items {
		fmt.Fprintln(out, f.FormatCard(r))
		fmt.Fprintln(out)
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	e, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	r, err := e.client.Get(cmd.Context(), id)
	if err != nil {
		return describe(err)
	}

	if showJSON {
		return writeJSON(cmd.OutOrStdout(), r)
	}
	fmt.Fprintln(cmd.OutOrStdout(), e.formatter.FormatDetail(*r))
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	d := reminder.Draft{Title: args[0], Description: addDescription}
	if d.DueDate, err = reminder.ParseInput(addDue); err != nil {
		return fmt.Errorf("--due: %w", err)
	}
	if d.Priority, err = reminder.ParsePriority(addPriority); err != nil {
		return fmt.Errorf("--priority: %w", err)
	}
	d = d.Normalize()
	if err := reminder.NewValidator(nil).Draft(d); err != nil {
		return e.fieldErrors(cmd, err)
	}

	var created *reminder.Reminder
	err = e.busy(cmd, "Creating reminder...", func(ctx context.Context) error {
		created, err = e.client.Create(ctx, d)
		return err
	})
	if err != nil {
		return describe(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, e.formatter.FormatSuccess("Reminder created successfully!"))
	fmt.Fprintln(out, e.formatter.FormatCard(*created))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	e, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	current, err := e.client.Get(cmd.Context(), id)
	if err != nil {
		return describe(err)
	}

	d := reminder.DraftFrom(*current)
	flags := cmd.Flags()
	if flags.Changed("title") {
		d.Title = editTitle
	}
	if flags.Changed("description") {
		d.Description = editDescription
	}
	if flags.Changed("due") {
		if d.DueDate, err = reminder.ParseInput(editDue); err != nil {
			return fmt.Errorf("--due: %w", err)
		}
	}
	if flags.Changed("priority") {
		if d.Priority, err = reminder.ParsePriority(editPriority); err != nil {
			return fmt.Errorf("--priority: %w", err)
		}
	}
	d = d.Normalize()
	if err := reminder.NewValidator(nil).Draft(d); err != nil {
		return e.fieldErrors(cmd, err)
	}

	updated, err := e.client.Update(cmd.Context(), id, d)
	if err != nil {
		return describe(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, e.formatter.FormatSuccess("Reminder updated successfully!"))
	fmt.Fprintln(out, e.formatter.FormatCard(*updated))
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	e, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	status := e.statusLine(cmd, len(ids))
	var failed int
	for i, id := range ids {
		status.Step(i+1, len(ids), fmt.Sprintf("Completing #%d", id))
		r, err := e.client.Complete(cmd.Context(), id)
		status.Clear()
		if err != nil {
			failed++
			fmt.Fprintln(cmd.ErrOrStderr(), e.formatter.FormatError(fmt.Errorf("#%d: %w", id, describe(err))))
			continue
		}
		fmt.Fprintln(out, e.formatter.FormatSuccess(fmt.Sprintf("Completed #%d: %s", r.ID, r.Title)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reminders could not be completed", failed, len(ids))
	}
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	e, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !rmYes {
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete %d reminder(s)? [y/N] ", len(ids)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, e.formatter.FormatSystem("Nothing deleted."))
			return nil
		}
	}

	status := e.statusLine(cmd, len(ids))
	var failed int
	for i, id := range ids {
		status.Step(i+1, len(ids), fmt.Sprintf("Deleting #%d", id))
		err := e.client.Delete(cmd.Context(), id)
		status.Clear()
		if err != nil {
			failed++
			fmt.Fprintln(cmd.ErrOrStderr(), e.formatter.FormatError(fmt.Errorf("#%d: %w", id, describe(err))))
			continue
		}
		fmt.Fprintln(out, e.formatter.FormatSuccess(fmt.Sprintf("Deleted #%d", id)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reminders could not be deleted", failed, len(ids))
	}
	return nil
}

// busy runs fn with a spinner on stderr when stderr is a terminal.
func (e *env) busy(cmd *cobra.Command, msg string, fn func(ctx context.Context) error) error {
	if !isTerminal(cmd.ErrOrStderr()) {
		return fn(cmd.Context())
	}
	s := ui.NewSpinner(cmd.ErrOrStderr(), e.cfg.UI.ColoredOutput)
	s.Start(msg)
	defer s.Stop()
	return fn(cmd.Context())
}

// statusLine shows batch progress on stderr for more than one id.
func (e *env) statusLine(cmd *cobra.Command, n int) *ui.StatusLine {
	return ui.NewStatusLine(e.formatter, cmd.ErrOrStderr(), n > 1 && isTerminal(cmd.ErrOrStderr()))
}

// fieldErrors prints each validation message and returns a summary error.
func (e *env) fieldErrors(cmd *cobra.Command, err error) error {
	var fe reminder.FieldErrors
	if !errors.As(err, &fe) {
		return err
	}
	for _, f := range fe {
		fmt.Fprintln(cmd.ErrOrStderr(), e.formatter.FormatFieldError(f.Message))
	}
	return errors.New("reminder is not valid")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid reminder id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

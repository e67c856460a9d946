// Package mcptools exposes the reminder service as MCP tools so an agent
// can manage reminders through the same REST API the dashboard uses.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/notexe/reminder-dash/internal/dashboard"
	"github.com/notexe/reminder-dash/internal/reminder"
)

const (
	serverName    = "reminder"
	serverVersion = "1.0.0"

	duePageSize = 100
	// maxDuePages bounds get_due_reminders on very large backlogs.
	maxDuePages = 20
)

// Options configures a Server.
type Options struct {
	PageSize int
	Sort     reminder.Sort
	Now      func() time.Time
	Logger   logrus.FieldLogger
}

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	svc       dashboard.Service
	validate  *reminder.Validator
	opts      Options
	log       logrus.FieldLogger
}

// NewServer creates a new reminder MCP server backed by svc.
func NewServer(svc dashboard.Service, opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = dashboard.DefaultPageSize
	}
	if opts.Sort.Field == "" {
		opts.Sort = reminder.DefaultSort
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		opts.Logger = l
	}

	s := &Server{
		svc:      svc,
		validate: reminder.NewValidator(opts.Now),
		opts:     opts,
		log:      opts.Logger.WithField("component", "mcp"),
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

const dateHelp = "local time, e.g. 2025-01-15T09:00:00 or 2025-01-15 09:00"

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a new reminder with a title, due date, optional description and priority"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("due_date", mcp.Required(), mcp.Description("Due date, "+dateHelp)),
			mcp.WithString("description", mcp.Description("Optional description")),
			mcp.WithString("priority", mcp.Description("Priority: low, medium, high (default: medium)")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List one page of reminders, filtered by status, title and priority"),
			mcp.WithString("status", mcp.Description("Filter by status: active, completed, or empty for all")),
			mcp.WithString("search", mcp.Description("Case-insensitive text the title must contain")),
			mcp.WithString("priority", mcp.Description("Filter by priority: low, medium, high")),
			mcp.WithNumber("page", mcp.Description("Page number starting at 1 (default: 1)")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_reminder",
			mcp.WithDescription("Get a single reminder by id"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleGetReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_due_reminders",
			mcp.WithDescription("Get all active reminders that are due today or overdue"),
		),
		s.handleGetDueReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Mark a reminder as completed"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleCompleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Update a reminder's fields (title, description, due_date, priority); omitted fields keep their value"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("due_date", mcp.Description("New due date, "+dateHelp)),
			mcp.WithString("priority", mcp.Description("New priority: low, medium, high")),
		),
		s.handleUpdateReminder,
	)
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	dueDateStr := req.GetString("due_date", "")

	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	if dueDateStr == "" {
		return mcp.NewToolResultError("due_date is required"), nil
	}

	dueDate, err := reminder.ParseInput(dueDateStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid due_date: %v (%s)", err, dateHelp)), nil
	}
	priority, err := reminder.ParsePriority(req.GetString("priority", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d := reminder.Draft{
		Title:       title,
		Description: req.GetString("description", ""),
		DueDate:     dueDate,
		Priority:    priority,
	}.Normalize()
	if err := s.validate.Draft(d); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	added, err := s.svc.Create(ctx, d)
	if err != nil {
		s.log.WithError(err).Warn("add_reminder failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}

	return jsonResult(added), nil
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := reminder.Query{
		Page:     req.GetInt("page", 1),
		PageSize: s.opts.PageSize,
		Sort:     s.opts.Sort,
		Title:    req.GetString("search", ""),
	}
	if q.Page < 1 {
		q.Page = 1
	}

	var err error
	if q.Priority, err = reminder.ParsePriority(req.GetString("priority", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if status := req.GetString("status", ""); status != "" && status != "all" {
		tab, err := reminder.ParseTab(status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		q.Completed = reminder.CompletedFilter(tab == reminder.TabCompleted)
	}

	page, err := s.svc.List(ctx, q)
	if err != nil {
		s.log.WithError(err).Warn("list_reminders failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if len(page.Items) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	return jsonResult(map[string]any{
		"page":       q.Page,
		"totalPages": page.TotalPages,
		"total":      page.Total,
		"reminders":  page.Items,
	}), nil
}

func (s *Server) handleGetReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireID(req)
	if res != nil {
		return res, nil
	}

	r, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get reminder: %v", err)), nil
	}
	return jsonResult(r), nil
}

// handleGetDueReminders walks the active reminders page by page and keeps
// those the classifier puts in "today", which includes overdue ones.
func (s *Server) handleGetDueReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var active []reminder.Reminder
	q := reminder.Query{
		Page:      1,
		PageSize:  duePageSize,
		Sort:      reminder.DefaultSort,
		Completed: reminder.CompletedFilter(false),
	}
	for ; q.Page <= maxDuePages; q.Page++ {
		page, err := s.svc.List(ctx, q)
		if err != nil {
			s.log.WithError(err).Warn("get_due_reminders failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to get due reminders: %v", err)), nil
		}
		active = append(active, page.Items...)
		if q.Page >= page.TotalPages {
			break
		}
	}

	due := reminder.Classify(s.opts.Now(), active)[reminder.GroupToday]
	if len(due) == 0 {
		return mcp.NewToolResultText("No due reminders."), nil
	}
	return jsonResult(due), nil
}

func (s *Server) handleCompleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireID(req)
	if res != nil {
		return res, nil
	}

	if _, err := s.svc.Complete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d marked as completed.", id)), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireID(req)
	if res != nil {
		return res, nil
	}

	if err := s.svc.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted.", id)), nil
}

// handleUpdateReminder merges the given fields into the current reminder
// because the service replaces all fields on update.
func (s *Server) handleUpdateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireID(req)
	if res != nil {
		return res, nil
	}

	current, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}
	d := reminder.DraftFrom(*current)

	if v := req.GetString("title", ""); v != "" {
		d.Title = v
	}
	if v, ok := req.GetArguments()["description"].(string); ok {
		d.Description = v
	}
	if v := req.GetString("due_date", ""); v != "" {
		t, err := reminder.ParseInput(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid due_date: %v", err)), nil
		}
		d.DueDate = t
	}
	if v := req.GetString("priority", ""); v != "" {
		p, err := reminder.ParsePriority(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		d.Priority = p
	}

	if err := s.validate.Draft(d); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	updated, err := s.svc.Update(ctx, id, d.Normalize())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}

	return jsonResult(updated), nil
}

func requireID(req mcp.CallToolRequest) (int64, *mcp.CallToolResult) {
	id, err := req.RequireInt("id")
	if err != nil || id <= 0 {
		return 0, mcp.NewToolResultError("id is required and must be a positive number")
	}
	return int64(id), nil
}

func jsonResult(v any) *mcp.CallToolResult {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(output))
}

// Serve runs the server over stdio until stdin closes.
func (s *Server) Serve() error {
	s.log.WithField("tools", len(s.mcpServer.ListTools())).Info("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

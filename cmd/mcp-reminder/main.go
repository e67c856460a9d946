// Command mcp-reminder provides an MCP server for reminder management.
//
// The tools create, list, complete and delete reminders through the
// reminder REST API, so an agent and the dashboard see the same data.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Environment:
//
//	REMINDER_API_BASE_URL  Reminder API base URL (default: http://localhost:8080/api/v1/reminders)
package main

import (
	"fmt"
	"os"

	"github.com/notexe/reminder-dash/internal/api"
	"github.com/notexe/reminder-dash/internal/config"
	"github.com/notexe/reminder-dash/internal/logging"
	"github.com/notexe/reminder-dash/internal/mcptools"
	"github.com/notexe/reminder-dash/internal/reminder"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(os.Getenv("REMINDER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol; logs never go there.
	log, closeLog, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	sort, err := reminder.ParseSort(cfg.List.Sort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid list.sort: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.TimeoutDuration(), log)
	s := mcptools.NewServer(client, mcptools.Options{
		PageSize: cfg.List.PageSize,
		Sort:     sort,
		Logger:   log,
	})

	if err := s.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - Reminder management via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    REMINDER_API_BASE_URL  Reminder API base URL
                           Default: http://localhost:8080/api/v1/reminders
    REMINDER_CONFIG        Optional YAML configuration file
    REMINDER_LOG__FILE     Log file (default: ~/.reminders/reminders.log)

TOOLS:
    add_reminder       Add a new reminder (title, due_date, description, priority)
    list_reminders     List one page of reminders (status, search, priority, page)
    get_reminder       Get a single reminder by id
    get_due_reminders  Get active reminders due today or overdue
    complete_reminder  Mark a reminder as completed
    delete_reminder    Delete a reminder permanently
    update_reminder    Update reminder fields (title, description, due_date, priority)

CONFIGURATION:
    Register with an MCP client:
    {
      "mcpServers": {
        "reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}

// Command reminder-server runs a development backend for the reminder API
// on a local SQLite database.
//
// Usage:
//
//	./reminder-server                    # listen on server.addr
//	./reminder-server -addr :9090 -db /tmp/r.db
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/notexe/reminder-dash/internal/config"
	"github.com/notexe/reminder-dash/internal/logging"
	"github.com/notexe/reminder-dash/internal/reminder"
	"github.com/notexe/reminder-dash/internal/server"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	logFile := flag.String("log-file", "", "Log file (default: stderr)")
	debug := flag.Bool("debug", false, "Run gin in debug mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}
	cfg.Log.File = *logFile

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Server.DBPath), 0o755); err != nil {
		log.WithError(err).Fatal("failed to create database directory")
	}
	store, err := reminder.NewStore(cfg.Server.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer store.Close()

	srv := server.New(store, server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("db", cfg.Server.DBPath).Info("reminder server starting")
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

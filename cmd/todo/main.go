package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/logging"
	"github.com/tgienger/todo/internal/notify"
	"github.com/tgienger/todo/internal/reminder"
	"github.com/tgienger/todo/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("todo %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(flag.NewFlagSet("todo", flag.ExitOnError), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	dataDir := cfg.DataDir
	if dataDir == "" {
		var err error
		if dataDir, err = db.DataDir(); err != nil {
			return fmt.Errorf("resolving data dir: %w", err)
		}
	}

	logger, logFile, err := logging.OpenFile(dataDir, logging.Options{
		Level:           cfg.LogLevel,
		Format:          cfg.LogFormat,
		ReportTimestamp: true,
	})
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Initialize the reminder queue
	dbPath, err := db.DefaultPath(dataDir)
	if err != nil {
		return fmt.Errorf("resolving database path: %w", err)
	}
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer database.Close()

	facility := notify.NewLocal(database, notify.LocalOptions{
		Enabled:      cfg.Notifications.Enabled,
		PollInterval: cfg.Notifications.Poll(),
		Logger:       logger.WithPrefix("notify"),
	})
	scheduler := reminder.New(facility, reminder.WithLogger(logger.WithPrefix("reminder")))

	// Create and run the application
	app := ui.NewApp(scheduler, ui.Options{
		AlertTimeout: cfg.Notifications.Alert(),
		Reminders:    facility,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Register the handler once, before anything can be scheduled
	if err := facility.Configure(notify.Handler{
		Presentation: notify.DefaultPresentation,
		Deliver:      func(d notify.Delivery) { p.Send(d) },
	}); err != nil {
		return fmt.Errorf("configuring notifications: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := facility.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("reminder loop stopped", "err", err)
		}
	}()
	// The poll loop must stop before the database and log file close
	defer func() {
		cancel()
		<-done
	}()

	logger.Info("starting", "version", version, "notifications", cfg.Notifications.Enabled)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

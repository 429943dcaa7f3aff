package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/config"
	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/logging"
	"github.com/tgienger/taskdeck/internal/session"
	"github.com/tgienger/taskdeck/internal/ui"
	"github.com/tgienger/taskdeck/internal/ui/views"
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
		fmt.Printf("taskdeck %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	startPath := cfg.App.StartPath
	if len(os.Args) > 1 {
		startPath = os.Args[1]
	}

	dataDir, err := db.DataDir(cfg.App.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving data directory: %v\n", err)
		os.Exit(1)
	}

	// Initialize database
	database, err := db.New(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// The TUI owns the terminal, so logs go to a file
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = filepath.Join(dataDir, "taskdeck.log")
	}
	logFile, err := logging.OpenFile(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logging.New(logFile, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info("starting", "version", version, "api", cfg.API.BaseURL, "start_path", startPath)

	tokens := db.NewTokenStore(database, log)
	client := api.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout}, tokens, log)
	services := api.NewServices(client)

	deps := views.Deps{
		Ctx:      context.Background(),
		Services: services,
		Session:  session.New(services.Auth, log),
		Log:      log,
		Now:      time.Now,
	}

	// Create and run the application
	app := ui.NewApp(deps, startPath)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		log.Error("program exited", "err", err)
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

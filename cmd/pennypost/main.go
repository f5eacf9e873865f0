package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pennypost/pennypost/internal/config"
	"github.com/pennypost/pennypost/internal/database"
	"github.com/pennypost/pennypost/internal/database/repository"
	"github.com/pennypost/pennypost/internal/recommend"
	"github.com/pennypost/pennypost/internal/service"
	"github.com/pennypost/pennypost/internal/testdata"
	"github.com/pennypost/pennypost/internal/tui"
)

func main() {
	demo := flag.Bool("demo", false, "seed sample expenses into an empty database")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path, "internal/database/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	userID, err := database.SeedDefaults(ctx, db)
	if err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	logFile, err := os.OpenFile(filepath.Join(filepath.Dir(cfg.Database.Path), "pennypost.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, nil))

	// repositories
	catRepo := repository.NewCategoryRepo(db)
	presetRepo := repository.NewPresetRepo(db)
	expenseRepo := repository.NewExpenseRepo(db)

	if *demo {
		err := testdata.Seed(ctx, userID, testdata.Repos{
			Categories: catRepo,
			Expenses:   expenseRepo,
			Presets:    presetRepo,
		})
		if err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}

	// services
	rec := &recommend.Service{
		Presets:       presetRepo,
		Categories:    catRepo,
		Cache:         recommend.NewCache(),
		Limit:         cfg.Suggestions.Limit,
		FallbackColor: cfg.Suggestions.FallbackColor,
		Logger:        logger,
	}
	expenses := &service.ExpenseService{
		Expenses:        expenseRepo,
		Recommendations: rec,
	}

	app := tui.New(ctx, cfg, userID, catRepo, expenses, rec)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "pennypost: %v\n", err)
		os.Exit(1)
	}
}

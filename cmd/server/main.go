package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bidpilot/internal/audit"
	"bidpilot/internal/config"
	"bidpilot/internal/db"
	"bidpilot/internal/email"
	"bidpilot/internal/jobs"
	"bidpilot/internal/searchad"
	"bidpilot/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	strategy, err := config.LoadStrategy()
	if err != nil {
		log.Fatalf("Failed to load strategy config: %v", err)
	}

	// Database is optional: without it, visit tracking and bid history
	// are disabled but everything upstream-backed still works.
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")
	} else {
		log.Println("DATABASE_URL not set; visit tracking and bid history disabled")
	}

	auditor := audit.NewLogger(cfg.AuditDir)

	srv := server.New(cfg)
	srv.RegisterRoutes(database, strategy, auditor)

	// Background bid adjustment needs server-owned credentials.
	if cfg.AutoBidEnabled {
		if !cfg.HasCredentials() {
			log.Fatal("AUTOBID_ENABLED requires NAVER_API_KEY, NAVER_SECRET_KEY and NAVER_CUSTOMER_ID")
		}
		targets := splitTargets(cfg.AutoBidTargets)
		if len(targets) == 0 {
			log.Fatal("AUTOBID_ENABLED requires AUTOBID_TARGETS")
		}
		interval, err := time.ParseDuration(cfg.AutoBidInterval)
		if err != nil {
			log.Fatalf("Invalid AUTOBID_INTERVAL: %v", err)
		}

		bidder := jobs.NewAutoBidder(
			searchad.New(cfg.Credentials(), ""),
			strategy, auditor, database, email.NewNotifier(cfg),
			targets, interval,
		)
		go bidder.Start(ctx)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()
	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

func splitTargets(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package jobs

import (
	"context"
	"log"
	"time"

	"bidpilot/internal/audit"
	"bidpilot/internal/bidding"
	"bidpilot/internal/config"
	"bidpilot/internal/db"
	"bidpilot/internal/email"
	"bidpilot/internal/rank"
	"bidpilot/internal/searchad"
)

// AutoBidder runs periodic bid passes over a fixed set of targets using
// the server-owned credentials.
type AutoBidder struct {
	client   *searchad.Client
	strategy *config.StrategyConfig
	auditor  *audit.Logger
	db       *db.DB
	notifier *email.Notifier
	targets  []string
	interval time.Duration
}

// NewAutoBidder creates a new background bid adjuster. The database and
// notifier may be nil; history and report mail are then skipped.
func NewAutoBidder(client *searchad.Client, strategy *config.StrategyConfig, auditor *audit.Logger, database *db.DB, notifier *email.Notifier, targets []string, interval time.Duration) *AutoBidder {
	return &AutoBidder{
		client:   client,
		strategy: strategy,
		auditor:  auditor,
		db:       database,
		notifier: notifier,
		targets:  targets,
		interval: interval,
	}
}

// Start begins the background bid adjustment loop.
func (a *AutoBidder) Start(ctx context.Context) {
	log.Printf("Auto bidder started (interval: %v, targets: %d)", a.interval, len(a.targets))

	// Run immediately on start
	a.runAll(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Auto bidder stopped")
			return
		case <-ticker.C:
			a.runAll(ctx)
		}
	}
}

// runAll executes one bid pass per configured target.
func (a *AutoBidder) runAll(ctx context.Context) {
	for _, target := range a.targets {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var history bidding.HistorySink
		if a.db != nil {
			history = a.db
		}
		runner := bidding.NewRunner(a.client, rank.NewResolver(a.client), a.auditor, history, a.strategy.PolicyFor(target))

		report, err := runner.Run(ctx, target, false)
		if err != nil {
			log.Printf("Auto bidder: pass over %s failed: %v", target, err)
			continue
		}
		log.Printf("Auto bidder: %s scanned=%d changed=%d held=%d failed=%d",
			target, report.Scanned, report.Changed, report.Held, report.Failed)
		if a.notifier != nil {
			a.notifier.NotifyBidReport(report)
		}
	}
}

// Command bidctl runs one-shot bid or expansion passes from the terminal,
// using the same credentials env vars as the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bidpilot/internal/audit"
	"bidpilot/internal/bidding"
	"bidpilot/internal/config"
	"bidpilot/internal/expansion"
	"bidpilot/internal/rank"
	"bidpilot/internal/searchad"
)

func main() {
	var (
		mode     = flag.String("mode", "bid", "operation: bid, expand or ping")
		target   = flag.String("target", "", "campaign (cmp-*) or ad group id")
		keywords = flag.String("keywords", "", "comma-separated keywords to add (expand mode)")
		bidAmt   = flag.Int("bid", 0, "bid for added keywords; 0 uses the source group default (expand mode)")
		dryRun   = flag.Bool("dry-run", false, "compute decisions without writing upstream")
		noClone  = flag.Bool("no-clone", false, "skip copying ads into new sibling groups")
	)
	flag.Parse()

	cfg := config.Load()
	if !cfg.HasCredentials() {
		log.Fatal("NAVER_API_KEY, NAVER_SECRET_KEY and NAVER_CUSTOMER_ID are required")
	}
	strategy, err := config.LoadStrategy()
	if err != nil {
		log.Fatalf("Failed to load strategy config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sa := searchad.New(cfg.Credentials(), "")

	switch *mode {
	case "ping":
		if err := sa.Ping(ctx); err != nil {
			log.Fatalf("Upstream unreachable: %v", err)
		}
		fmt.Println("ok")

	case "bid":
		if *target == "" {
			log.Fatal("-target is required")
		}
		runner := bidding.NewRunner(sa, rank.NewResolver(sa), audit.NewLogger(cfg.AuditDir), nil, strategy.PolicyFor(*target))
		report, err := runner.Run(ctx, *target, *dryRun)
		if err != nil {
			log.Fatalf("Bid pass failed: %v", err)
		}
		printJSON(report)

	case "expand":
		if *target == "" || *keywords == "" {
			log.Fatal("-target and -keywords are required")
		}
		var cloner expansion.GroupCloner
		if !*noClone {
			cloner = expansion.NewCloner(sa)
		}
		report, err := expansion.NewAllocator(sa, cloner).Expand(ctx, *target, splitKeywords(*keywords), *bidAmt)
		if err != nil {
			printJSON(report)
			log.Fatalf("Expansion failed: %v", err)
		}
		printJSON(report)

	default:
		log.Fatalf("Unknown mode %q", *mode)
	}
}

func splitKeywords(raw string) []string {
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
}

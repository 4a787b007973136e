package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bidpilot/internal/audit"
	"bidpilot/internal/config"
	"bidpilot/internal/db"
	"bidpilot/internal/handlers"
	"bidpilot/internal/handlers/api"
	"bidpilot/internal/middleware"
)

// RegisterRoutes registers all application routes. The database may be nil;
// persistence-backed routes then degrade gracefully.
func (s *Server) RegisterRoutes(database *db.DB, strategy *config.StrategyConfig, auditor *audit.Logger) {
	// Initialize middleware
	creds := middleware.NewCredentialsMiddleware(s.Cfg.Credentials())

	// Initialize handlers
	campaignHandler := api.NewCampaignHandler()
	adGroupHandler := api.NewAdGroupHandler()
	keywordHandler := api.NewKeywordHandler()
	adHandler := api.NewAdHandler()
	extensionHandler := api.NewExtensionHandler()
	channelHandler := api.NewChannelHandler()
	toolsHandler := api.NewToolsHandler()
	biddingHandler := api.NewBiddingHandler(strategy, auditor, database)
	expansionHandler := api.NewExpansionHandler(strategy)
	logHandler := api.NewLogHandler(database, auditor)
	pingHandler := api.NewPingHandler()
	probeHandler := handlers.NewProbeHandler(database)
	trackHandler := handlers.NewTrackHandler(database)
	dashboardHandler := handlers.NewDashboardHandler(database, s.Cfg)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Visit tracking: redirect for ad landing URLs, direct record for
	// landing pages posting their own location.
	s.App.Get("/t", trackHandler.Redirect)
	s.App.Post("/api/track/visit", trackHandler.Record)

	// Dashboard
	s.App.Get("/", dashboardHandler.Index)

	// Log endpoints need no upstream credentials. Registered before the
	// credentials middleware mounts on /api so requests match them first.
	s.App.Get("/api/logs/bids", logHandler.BidChanges)
	s.App.Post("/api/logs/bids", logHandler.SaveBidLog)
	s.App.Get("/api/logs/visits", logHandler.Visits)

	// JSON API - every upstream-backed route requires credentials
	apiGroup := s.App.Group("/api", creds.RequireCredentials)

	apiGroup.Get("/ping", pingHandler.Ping)

	apiGroup.Get("/campaigns", campaignHandler.List)

	apiGroup.Get("/adgroups", adGroupHandler.List)
	apiGroup.Get("/adgroups/:id", adGroupHandler.Get)
	apiGroup.Post("/adgroups", adGroupHandler.Create)
	apiGroup.Put("/adgroups/bid", adGroupHandler.UpdateBid)

	apiGroup.Get("/keywords", keywordHandler.List)
	apiGroup.Post("/keywords", keywordHandler.Create)
	apiGroup.Put("/keywords/bids", keywordHandler.UpdateBids)

	apiGroup.Get("/ads", adHandler.List)
	apiGroup.Post("/ads", adHandler.Create)
	apiGroup.Delete("/ads/:id", adHandler.Delete)
	apiGroup.Put("/ads/:id/status", adHandler.SetStatus)
	apiGroup.Get("/ads/grouped", adHandler.Grouped)
	apiGroup.Put("/ads/grouped/status", adHandler.SetGroupedStatus)

	apiGroup.Get("/extensions", extensionHandler.List)
	apiGroup.Post("/extensions", extensionHandler.Create)
	apiGroup.Delete("/extensions/:id", extensionHandler.Delete)
	apiGroup.Put("/extensions/:id/status", extensionHandler.SetStatus)

	apiGroup.Get("/channels", channelHandler.List)

	apiGroup.Get("/tools/keyword-counts", toolsHandler.KeywordCounts)
	apiGroup.Get("/tools/ip-exclusions", toolsHandler.ListIPExclusions)
	apiGroup.Post("/tools/ip-exclusions", toolsHandler.AddIPExclusion)
	apiGroup.Delete("/tools/ip-exclusions/:ip", toolsHandler.RemoveIPExclusion)

	apiGroup.Post("/bidding/run", biddingHandler.Run)
	apiGroup.Post("/expansion/run", expansionHandler.Run)
}

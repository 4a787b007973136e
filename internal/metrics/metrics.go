package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bidpilot_upstream_requests_total",
		Help: "Upstream API requests by path prefix and response status",
	}, []string{"path", "status"})

	upstreamRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bidpilot_upstream_retries_total",
		Help: "Retries triggered by upstream rate limiting",
	})

	bidDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bidpilot_bid_decisions_total",
		Help: "Bid decisions by action (explore, raise, lower, hold)",
	}, []string{"action"})

	expansionGroups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bidpilot_expansion_groups_created_total",
		Help: "Sibling ad groups created by keyword expansion",
	})

	keywordsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bidpilot_keywords_added_total",
		Help: "Keywords successfully submitted by keyword expansion",
	})
)

// RecordUpstreamRequest counts one upstream API request.
func RecordUpstreamRequest(path, status string) {
	upstreamRequests.WithLabelValues(path, status).Inc()
}

// RecordUpstreamRetry counts one rate-limit retry.
func RecordUpstreamRetry() {
	upstreamRetries.Inc()
}

// RecordBidDecision counts one bid decision by its action tag.
func RecordBidDecision(action string) {
	bidDecisions.WithLabelValues(action).Inc()
}

// RecordExpansionGroup counts one sibling group created during expansion.
func RecordExpansionGroup() {
	expansionGroups.Inc()
}

// RecordKeywordsAdded counts keywords added during expansion.
func RecordKeywordsAdded(n int) {
	keywordsAdded.Add(float64(n))
}

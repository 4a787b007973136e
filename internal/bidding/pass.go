package bidding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bidpilot/internal/audit"
	"bidpilot/internal/db"
	"bidpilot/internal/metrics"
	"bidpilot/internal/models"
)

// mutationDelay spaces out bid updates so a large pass does not trip the
// upstream rate limiter.
const mutationDelay = 100 * time.Millisecond

// API is the slice of the upstream gateway a bid pass needs.
type API interface {
	AdGroups(ctx context.Context, campaignID string) ([]models.AdGroup, error)
	AdGroup(ctx context.Context, id string) (*models.AdGroup, error)
	Keywords(ctx context.Context, adGroupID string) ([]models.Keyword, error)
	UpdateKeywordBid(ctx context.Context, keywordID, adGroupID string, bid int) error
}

// RankSource resolves average rank per keyword id.
type RankSource interface {
	ResolveRanks(ctx context.Context, ids []string) map[string]float64
}

// HistorySink persists applied bid changes. *db.DB satisfies it.
type HistorySink interface {
	InsertBidChanges(ctx context.Context, changes []db.BidChange) error
}

// KeywordDecision is the per-keyword outcome of one pass.
type KeywordDecision struct {
	KeywordID string `json:"keywordId"`
	Keyword   string `json:"keyword"`
	AdGroupID string `json:"adGroupId"`
	OldBid    int    `json:"oldBid"`
	NewBid    int    `json:"newBid"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
	Applied   bool   `json:"applied"`
	Error     string `json:"error,omitempty"`
}

// Report summarizes one bid pass.
type Report struct {
	ID         uuid.UUID         `json:"id"`
	Target     string            `json:"target"`
	DryRun     bool              `json:"dryRun"`
	Policy     Policy            `json:"policy"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Scanned    int               `json:"scanned"`
	Changed    int               `json:"changed"`
	Held       int               `json:"held"`
	Failed     int               `json:"failed"`
	Decisions  []KeywordDecision `json:"decisions"`
}

// Runner executes bid passes against one account.
type Runner struct {
	api     API
	ranks   RankSource
	auditor *audit.Logger
	history HistorySink
	policy  Policy
	delay   time.Duration
	now     func() time.Time
}

// NewRunner builds a Runner. The audit logger and history sink may be nil;
// the corresponding record is then skipped.
func NewRunner(api API, ranks RankSource, auditor *audit.Logger, history HistorySink, policy Policy) *Runner {
	return &Runner{
		api:     api,
		ranks:   ranks,
		auditor: auditor,
		history: history,
		policy:  policy.Normalize(),
		delay:   mutationDelay,
		now:     time.Now,
	}
}

// Run executes one pass over the target, which is either a campaign id
// (cmp- prefix, expanded to all its ad groups) or a single ad group id.
// Locked or paused keywords are skipped. With dryRun set, decisions are
// computed and reported but nothing is written upstream.
func (r *Runner) Run(ctx context.Context, target string, dryRun bool) (*Report, error) {
	report := &Report{
		ID:        uuid.New(),
		Target:    target,
		DryRun:    dryRun,
		Policy:    r.policy,
		StartedAt: r.now(),
	}

	groups, err := r.resolveGroups(ctx, target)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		keyword models.Keyword
		bid     int
	}
	perGroup := make(map[string][]candidate)
	var allIDs []string

	for _, g := range groups {
		keywords, err := r.api.Keywords(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("list keywords for %s: %w", g.ID, err)
		}
		for _, kw := range keywords {
			if !kw.IsEligible() {
				continue
			}
			perGroup[g.ID] = append(perGroup[g.ID], candidate{
				keyword: kw,
				bid:     kw.EffectiveBid(g.BidAmt),
			})
			allIDs = append(allIDs, kw.ID)
		}
	}

	ranks := r.ranks.ResolveRanks(ctx, allIDs)

	for _, g := range groups {
		for _, cand := range perGroup[g.ID] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			dec := Decide(cand.bid, ranks[cand.keyword.ID], r.policy)
			metrics.RecordBidDecision(dec.Action)

			kd := KeywordDecision{
				KeywordID: cand.keyword.ID,
				Keyword:   cand.keyword.Text,
				AdGroupID: g.ID,
				OldBid:    cand.bid,
				NewBid:    dec.NewBid,
				Action:    dec.Action,
				Reason:    dec.Reason,
			}
			report.Scanned++

			if dec.Changed() && !dryRun {
				if err := r.api.UpdateKeywordBid(ctx, cand.keyword.ID, g.ID, dec.NewBid); err != nil {
					kd.Error = err.Error()
					report.Failed++
					slog.Error("bid update failed",
						"keyword", cand.keyword.Text, "bid", dec.NewBid, "error", err)
				} else {
					kd.Applied = true
					r.pause(ctx)
				}
			}
			if dec.Changed() {
				report.Changed++
			} else {
				report.Held++
			}
			report.Decisions = append(report.Decisions, kd)
		}
	}

	report.FinishedAt = r.now()
	r.record(ctx, report)
	return report, nil
}

// resolveGroups expands the target into the ad groups to process.
func (r *Runner) resolveGroups(ctx context.Context, target string) ([]models.AdGroup, error) {
	if strings.HasPrefix(target, "cmp-") {
		groups, err := r.api.AdGroups(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("list ad groups: %w", err)
		}
		eligible := groups[:0]
		for _, g := range groups {
			if !g.UserLock {
				eligible = append(eligible, g)
			}
		}
		return eligible, nil
	}

	g, err := r.api.AdGroup(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch ad group: %w", err)
	}
	return []models.AdGroup{*g}, nil
}

// record writes the applied changes to the audit log and the history sink.
// Sink failures are logged, not fatal: the upstream mutations already
// happened.
func (r *Runner) record(ctx context.Context, report *Report) {
	var entries []audit.Entry
	var changes []db.BidChange
	for _, kd := range report.Decisions {
		if !kd.Applied {
			continue
		}
		entries = append(entries, audit.Entry{
			Time:    report.FinishedAt,
			Keyword: kd.Keyword,
			OldBid:  kd.OldBid,
			NewBid:  kd.NewBid,
			Reason:  kd.Reason,
		})
		changes = append(changes, db.BidChange{
			ReportID:  report.ID,
			ChangedAt: report.FinishedAt,
			KeywordID: kd.KeywordID,
			Keyword:   kd.Keyword,
			OldBid:    kd.OldBid,
			NewBid:    kd.NewBid,
			Delta:     kd.NewBid - kd.OldBid,
			Action:    kd.Action,
			Reason:    kd.Reason,
		})
	}

	if r.auditor != nil {
		if err := r.auditor.Append(entries); err != nil {
			slog.Error("audit log write failed", "error", err)
		}
	}
	if r.history != nil {
		if err := r.history.InsertBidChanges(ctx, changes); err != nil {
			slog.Error("bid history write failed", "error", err)
		}
	}
}

func (r *Runner) pause(ctx context.Context) {
	if r.delay <= 0 {
		return
	}
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
	}
}

package expansion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bidpilot/internal/metrics"
	"bidpilot/internal/models"
	"bidpilot/internal/searchad"
	"bidpilot/internal/validation"
)

// maxConsecutiveFailures bounds a run where every keyword submission is
// being rejected, so a bad account state cannot spin forever.
const maxConsecutiveFailures = 100

// ErrStalled is returned when keyword creation fails maxConsecutiveFailures
// times in a row.
var ErrStalled = errors.New("keyword creation stalled")

// API is the slice of the upstream gateway the allocator needs.
type API interface {
	AdGroup(ctx context.Context, id string) (*models.AdGroup, error)
	AdGroups(ctx context.Context, campaignID string) ([]models.AdGroup, error)
	Keywords(ctx context.Context, adGroupID string) ([]models.Keyword, error)
	CreateKeywords(ctx context.Context, adGroupID string, items []searchad.NewKeyword) ([]models.Keyword, error)
	CreateAdGroup(ctx context.Context, campaignID, name string) (*models.AdGroup, error)
	UpdateAdGroupBid(ctx context.Context, id string, bid int) error
}

// GroupCloner copies ads and extensions into a freshly created group.
type GroupCloner interface {
	CloneGroupAssets(ctx context.Context, src, dst string) (CloneResult, error)
}

// SkippedKeyword records one input keyword that was not added and why.
type SkippedKeyword struct {
	Text   string `json:"keyword"`
	Reason string `json:"reason"`
}

// GroupAllocation is the per-group slice of an expansion report. Clone is
// set only for groups created during this run.
type GroupAllocation struct {
	GroupID string       `json:"nccAdgroupId"`
	Name    string       `json:"name"`
	Created bool         `json:"created"`
	Added   int          `json:"added"`
	Clone   *CloneResult `json:"clone,omitempty"`
}

// Report summarizes one expansion run.
type Report struct {
	ID         uuid.UUID         `json:"id"`
	SourceID   string            `json:"sourceAdgroupId"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Requested  int               `json:"requested"`
	Added      int               `json:"added"`
	Groups     []GroupAllocation `json:"groups"`
	Skipped    []SkippedKeyword  `json:"skipped"`
}

// Allocator distributes new keywords into an ad group family, spilling
// into numbered sibling groups when the current one is full.
type Allocator struct {
	api    API
	cloner GroupCloner
	now    func() time.Time
}

// NewAllocator builds an Allocator. The cloner may be nil; sibling groups
// are then created empty.
func NewAllocator(api API, cloner GroupCloner) *Allocator {
	return &Allocator{api: api, cloner: cloner, now: time.Now}
}

// Expand adds the given keywords to the family of the source ad group.
// Input is normalized and deduplicated against what the family already
// holds; the source group is filled to capacity first, then numbered
// siblings are created (or reused when the name already exists upstream)
// with the source's ads and extensions cloned in. Keywords are submitted
// at bidAmt when positive, otherwise at the source group's default bid;
// either way never below the platform floor.
func (a *Allocator) Expand(ctx context.Context, sourceID string, rawKeywords []string, bidAmt int) (*Report, error) {
	report := &Report{
		ID:        uuid.New(),
		SourceID:  sourceID,
		StartedAt: a.now(),
		Requested: len(rawKeywords),
	}

	source, err := a.api.AdGroup(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("fetch source ad group: %w", err)
	}

	seen, used, err := a.familyState(ctx, source)
	if err != nil {
		return nil, err
	}

	pending := a.dedup(rawKeywords, seen, report)

	bid := bidAmt
	if bid <= 0 {
		bid = source.BidAmt
	}
	bid = max(bid, validation.FloorBid)
	current := source
	capacity := models.MaxKeywordsPerGroup - used[current.ID]
	failures := 0

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = a.now()
			return report, err
		}

		if capacity <= 0 {
			next, clone, err := a.nextGroup(ctx, current, bid)
			if err != nil {
				report.FinishedAt = a.now()
				return report, err
			}
			current = next
			capacity = models.MaxKeywordsPerGroup - used[current.ID]
			a.recordGroup(report, current, clone)
			continue
		}

		take := min(capacity, len(pending), searchad.MaxKeywordBatch)
		chunk := pending[:take]
		pending = pending[take:]

		created, err := a.api.CreateKeywords(ctx, current.ID, toNewKeywords(chunk, bid))
		added := len(created)
		if err != nil {
			// Retry the rejected remainder one at a time so a single bad
			// keyword cannot sink the whole chunk.
			retried, retryFailures := a.retrySingly(ctx, current.ID, chunk[added:], bid, report)
			added += retried
			if retryFailures > 0 {
				failures += retryFailures
			} else {
				failures = 0
			}
		} else {
			failures = 0
		}

		capacity -= added
		used[current.ID] += added
		report.Added += added
		a.addToGroup(report, current, added)
		metrics.RecordKeywordsAdded(added)

		if failures >= maxConsecutiveFailures {
			report.FinishedAt = a.now()
			return report, fmt.Errorf("%w after %d consecutive rejections", ErrStalled, failures)
		}
	}

	report.FinishedAt = a.now()
	return report, nil
}

// familyState loads the normalized keyword texts and counts of every group
// in the source's name family.
func (a *Allocator) familyState(ctx context.Context, source *models.AdGroup) (map[string]bool, map[string]int, error) {
	base, _ := SplitName(source.Name)

	siblings, err := a.api.AdGroups(ctx, source.CampaignID)
	if err != nil {
		return nil, nil, fmt.Errorf("list sibling ad groups: %w", err)
	}

	seen := make(map[string]bool)
	used := make(map[string]int)
	for _, g := range siblings {
		if b, _ := SplitName(g.Name); b != base {
			continue
		}
		keywords, err := a.api.Keywords(ctx, g.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("list keywords for %s: %w", g.ID, err)
		}
		used[g.ID] = len(keywords)
		for _, kw := range keywords {
			seen[validation.NormalizeKeyword(kw.Text)] = true
		}
	}
	return seen, used, nil
}

// dedup normalizes the input, dropping invalid texts, duplicates within
// the input, and keywords the family already holds.
func (a *Allocator) dedup(raw []string, seen map[string]bool, report *Report) []string {
	var pending []string
	for _, text := range raw {
		if !validation.ValidateKeywordText(text) {
			report.Skipped = append(report.Skipped, SkippedKeyword{Text: text, Reason: "invalid keyword"})
			continue
		}
		norm := validation.NormalizeKeyword(text)
		if seen[norm] {
			report.Skipped = append(report.Skipped, SkippedKeyword{Text: text, Reason: "already present"})
			continue
		}
		seen[norm] = true
		pending = append(pending, text)
	}
	return pending
}

// nextGroup creates the next numbered sibling after cur, reusing an
// existing group when the upstream reports the name as taken. A non-nil
// clone result marks the group as created during this run.
func (a *Allocator) nextGroup(ctx context.Context, cur *models.AdGroup, bid int) (*models.AdGroup, *CloneResult, error) {
	name := NextSiblingName(cur.Name)

	created, err := a.api.CreateAdGroup(ctx, cur.CampaignID, name)
	if err == nil {
		if err := a.api.UpdateAdGroupBid(ctx, created.ID, bid); err != nil {
			slog.Warn("default bid on new group not set", "group", created.ID, "error", err)
		}
		clone := &CloneResult{}
		if a.cloner != nil {
			result, err := a.cloner.CloneGroupAssets(ctx, cur.ID, created.ID)
			if err != nil {
				slog.Warn("asset clone failed", "src", cur.ID, "dst", created.ID, "error", err)
			}
			*clone = result
		}
		metrics.RecordExpansionGroup()
		return created, clone, nil
	}

	if !errors.Is(err, searchad.ErrConflict) {
		return nil, nil, fmt.Errorf("create ad group %q: %w", name, err)
	}

	// Name taken: a previous run created it. Find and continue there.
	groups, lerr := a.api.AdGroups(ctx, cur.CampaignID)
	if lerr != nil {
		return nil, nil, fmt.Errorf("lookup existing group %q: %w", name, lerr)
	}
	for i := range groups {
		if groups[i].Name == name {
			return &groups[i], nil, nil
		}
	}
	return nil, nil, fmt.Errorf("group %q reported as existing but not found", name)
}

// retrySingly resubmits the keywords of a failed chunk one at a time.
// Returns how many succeeded and how many failed.
func (a *Allocator) retrySingly(ctx context.Context, groupID string, chunk []string, bid int, report *Report) (added, failed int) {
	for _, text := range chunk {
		if ctx.Err() != nil {
			return added, failed
		}
		if _, err := a.api.CreateKeywords(ctx, groupID, toNewKeywords([]string{text}, bid)); err != nil {
			report.Skipped = append(report.Skipped, SkippedKeyword{Text: text, Reason: err.Error()})
			failed++
			continue
		}
		added++
	}
	return added, failed
}

func (a *Allocator) recordGroup(report *Report, g *models.AdGroup, clone *CloneResult) {
	for i := range report.Groups {
		if report.Groups[i].GroupID == g.ID {
			return
		}
	}
	report.Groups = append(report.Groups, GroupAllocation{
		GroupID: g.ID,
		Name:    g.Name,
		Created: clone != nil,
		Clone:   clone,
	})
}

func (a *Allocator) addToGroup(report *Report, g *models.AdGroup, n int) {
	if n == 0 {
		return
	}
	for i := range report.Groups {
		if report.Groups[i].GroupID == g.ID {
			report.Groups[i].Added += n
			return
		}
	}
	report.Groups = append(report.Groups, GroupAllocation{GroupID: g.ID, Name: g.Name, Added: n})
}

func toNewKeywords(texts []string, bid int) []searchad.NewKeyword {
	items := make([]searchad.NewKeyword, 0, len(texts))
	for _, t := range texts {
		items = append(items, searchad.NewKeyword{Text: t, BidAmt: bid})
	}
	return items
}

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"bidpilot/internal/db"
	"bidpilot/internal/models"
	"bidpilot/internal/testutil"
)

func TestBidChangeRoundTrip(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	reportID := uuid.New()
	changes := []db.BidChange{
		{ReportID: reportID, ChangedAt: time.Now().Add(-time.Minute), KeywordID: "kwd-1", Keyword: "running shoes", OldBid: 500, NewBid: 800, Delta: 300, Action: "raise", Reason: "rank behind target"},
		{ReportID: reportID, ChangedAt: time.Now(), KeywordID: "kwd-2", Keyword: "sneakers", OldBid: 900, NewBid: 600, Delta: -300, Action: "lower", Reason: "rank ahead of target"},
	}
	if err := database.InsertBidChanges(ctx, changes); err != nil {
		t.Fatalf("InsertBidChanges() error = %v", err)
	}

	got, err := database.RecentBidChanges(ctx, 10)
	if err != nil {
		t.Fatalf("RecentBidChanges() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d changes, want 2", len(got))
	}
	// Newest first.
	if got[0].KeywordID != "kwd-2" || got[1].KeywordID != "kwd-1" {
		t.Errorf("order = %s, %s", got[0].KeywordID, got[1].KeywordID)
	}
	if got[1].Delta != 300 || got[1].ReportID != reportID {
		t.Errorf("row = %+v", got[1])
	}
}

func TestInsertBidChangesEmpty(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	if err := database.InsertBidChanges(context.Background(), nil); err != nil {
		t.Errorf("InsertBidChanges(nil) error = %v", err)
	}
}

func TestVisitRoundTrip(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	visits := []*models.Visit{
		{ID: uuid.New(), Timestamp: time.Now().Add(-time.Hour), IP: "10.0.0.1", Type: models.VisitAd, Keyword: "running shoes", URL: "https://shop.example.com/", Referrer: ""},
		{ID: uuid.New(), Timestamp: time.Now(), IP: "10.0.0.2", Type: models.VisitOrganic, Keyword: "-", URL: "https://shop.example.com/", Referrer: "https://search.naver.com/"},
	}
	for _, v := range visits {
		if err := database.InsertVisit(ctx, v); err != nil {
			t.Fatalf("InsertVisit() error = %v", err)
		}
	}

	got, err := database.RecentVisits(ctx, 10)
	if err != nil {
		t.Fatalf("RecentVisits() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d visits, want 2", len(got))
	}
	if got[0].Type != models.VisitOrganic {
		t.Errorf("newest visit type = %s, want ORGANIC", got[0].Type)
	}

	counts, err := database.CountVisitsByType(ctx)
	if err != nil {
		t.Fatalf("CountVisitsByType() error = %v", err)
	}
	if counts[models.VisitAd] != 1 || counts[models.VisitOrganic] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

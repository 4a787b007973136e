package searchad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestCreateKeywordsBatches(t *testing.T) {
	var batchSizes []int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var batch []map[string]any
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			t.Fatalf("decode batch: %v", err)
		}
		batchSizes = append(batchSizes, len(batch))

		if r.URL.Query().Get("nccAdgroupId") != "grp-1" {
			t.Errorf("nccAdgroupId = %q", r.URL.Query().Get("nccAdgroupId"))
		}
		for _, entry := range batch {
			if entry["useGroupBidAmt"] != false {
				t.Error("created keyword inherits the group bid")
			}
		}

		out := make([]map[string]any, len(batch))
		for i, entry := range batch {
			out[i] = map[string]any{"nccKeywordId": fmt.Sprintf("kwd-%d", i), "keyword": entry["keyword"]}
		}
		json.NewEncoder(w).Encode(out)
	})

	items := make([]NewKeyword, 150)
	for i := range items {
		items[i] = NewKeyword{Text: fmt.Sprintf("kw %d", i), BidAmt: 100}
	}

	created, err := client.CreateKeywords(context.Background(), "grp-1", items)
	if err != nil {
		t.Fatalf("CreateKeywords() error = %v", err)
	}
	if len(created) != 150 {
		t.Errorf("created %d keywords, want 150", len(created))
	}
	want := []int{MaxKeywordBatch, 50}
	if len(batchSizes) != 2 || batchSizes[0] != want[0] || batchSizes[1] != want[1] {
		t.Errorf("batch sizes = %v, want %v", batchSizes, want)
	}
}

func TestStatsRejectsOversizedIDList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("oversized request reached the upstream")
	})

	ids := make([]string, MaxStatsIDs+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("kwd-%d", i)
	}
	if _, err := client.Stats(context.Background(), ids, Today()); err == nil {
		t.Fatal("Stats() = nil error for oversized id list")
	}
}

func TestStatsQueryShape(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data":[{"id":"kwd-1","impCnt":10,"clkCnt":"2","avgRnk":"3.5"}]}`))
	})

	rows, err := client.Stats(context.Background(), []string{"kwd-1", "kwd-2"}, Today())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if gotQuery.Get("ids") != "kwd-1,kwd-2" {
		t.Errorf("ids = %q", gotQuery.Get("ids"))
	}
	if gotQuery.Get("datePreset") != "today" {
		t.Errorf("datePreset = %q", gotQuery.Get("datePreset"))
	}
	if !strings.Contains(gotQuery.Get("fields"), "avgRnk") {
		t.Errorf("fields = %q, want avgRnk included", gotQuery.Get("fields"))
	}

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	// Numeric fields arrive as numbers or strings interchangeably.
	if rows[0].Impressions != 10 || rows[0].Clicks != 2 || rows[0].AvgRank != 3.5 {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestTrailing30DaysWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	w := Trailing30Days(now)

	q := url.Values{}
	w.query(q)

	var tr map[string]string
	if err := json.Unmarshal([]byte(q.Get("timeRange")), &tr); err != nil {
		t.Fatalf("timeRange is not JSON: %v", err)
	}
	if tr["since"] != "2025-05-16" || tr["until"] != "2025-06-14" {
		t.Errorf("timeRange = %v", tr)
	}
}

func TestEstimateBidsByRankKeyFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["device"] != "MOBILE" {
			t.Errorf("device = %v", body["device"])
		}
		// The upstream names the id field inconsistently across versions.
		w.Write([]byte(`{"estimate":[
			{"nccKeywordId":"kwd-1","bid":310},
			{"keywordId":"kwd-2","bid":420},
			{"key":"kwd-3","bid":530}
		]}`))
	})

	got, err := client.EstimateBidsByRank(context.Background(), []string{"kwd-1", "kwd-2", "kwd-3"}, 1, "MOBILE")
	if err != nil {
		t.Fatalf("EstimateBidsByRank() error = %v", err)
	}
	want := map[string]int{"kwd-1": 310, "kwd-2": 420, "kwd-3": 530}
	for id, bid := range want {
		if got[id] != bid {
			t.Errorf("estimate[%s] = %d, want %d", id, got[id], bid)
		}
	}
}

func TestUpdateKeywordBidRequestShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/ncc/keywords/kwd-1" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("fields") != "bidAmt,useGroupBidAmt" {
			t.Errorf("fields = %q", r.URL.Query().Get("fields"))
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["bidAmt"] != float64(800) || body["useGroupBidAmt"] != false || body["nccAdgroupId"] != "grp-1" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{}`))
	})

	if err := client.UpdateKeywordBid(context.Background(), "kwd-1", "grp-1", 800); err != nil {
		t.Fatalf("UpdateKeywordBid() error = %v", err)
	}
}

func TestFirstOrObject(t *testing.T) {
	type thing struct {
		ID string `json:"id"`
	}

	got, err := firstOrObject[thing]([]byte(`[{"id":"a"},{"id":"b"}]`))
	if err != nil || got.ID != "a" {
		t.Errorf("list form: got %+v, err %v", got, err)
	}

	got, err = firstOrObject[thing]([]byte(`{"id":"c"}`))
	if err != nil || got.ID != "c" {
		t.Errorf("object form: got %+v, err %v", got, err)
	}

	if _, err := firstOrObject[thing]([]byte(`[]`)); err == nil {
		t.Error("empty list: want error")
	}
}

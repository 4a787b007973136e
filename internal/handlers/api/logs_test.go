package api

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/audit"
)

func logApp(dir string) *fiber.App {
	app := fiber.New()
	h := NewLogHandler(nil, audit.NewLogger(dir))
	app.Post("/api/logs/bids", h.SaveBidLog)
	app.Get("/api/logs/bids", h.BidChanges)
	app.Get("/api/logs/visits", h.Visits)
	return app
}

func TestSaveBidLogAppendsToCSV(t *testing.T) {
	dir := t.TempDir()
	app := logApp(dir)

	body := `{"entries":[{"keyword":"running shoes","oldBid":500,"newBid":800,"reason":"manual raise"}]}`
	req := httptest.NewRequest("POST", "/api/logs/bids", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	name := filepath.Join(dir, "bid_log_"+time.Now().Format("2006-01-02")+".csv")
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "running shoes") {
		t.Errorf("log content = %q", data)
	}
}

func TestSaveBidLogRejectsBadBodies(t *testing.T) {
	app := logApp(t.TempDir())

	for name, body := range map[string]string{
		"not json":        "nope",
		"empty entries":   `{"entries":[]}`,
		"missing keyword": `{"entries":[{"oldBid":1,"newBid":2}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/logs/bids", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHistoryEndpointsWithoutDatabase(t *testing.T) {
	app := logApp(t.TempDir())

	for _, target := range []string{"/api/logs/bids", "/api/logs/visits"} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", target, resp.StatusCode)
		}
	}
}

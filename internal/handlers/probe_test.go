package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func TestLiveness(t *testing.T) {
	app := fiber.New()
	h := NewProbeHandler(nil)
	app.Get("/healthz", h.Liveness)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestReadinessWithoutDatabase(t *testing.T) {
	app := fiber.New()
	h := NewProbeHandler(nil)
	app.Get("/readyz", h.Readiness)

	resp, err := app.Test(httptest.NewRequest("GET", "/readyz", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200 when running without persistence", resp.StatusCode)
	}
}

package handlers

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func trackApp() *fiber.App {
	app := fiber.New()
	h := NewTrackHandler(nil)
	app.Get("/t", h.Redirect)
	return app
}

func TestRedirectForwardsVisitor(t *testing.T) {
	app := trackApp()

	dest := "https://shop.example.com/product?id=7"
	req := httptest.NewRequest("GET", "/t?url="+url.QueryEscape(dest)+"&n_keyword=shoes", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != dest {
		t.Errorf("Location = %q, want %q", got, dest)
	}
}

func TestRedirectRejectsBadDestinations(t *testing.T) {
	app := trackApp()

	for name, target := range map[string]string{
		"missing url":    "/t",
		"bad scheme":     "/t?url=" + url.QueryEscape("javascript:alert(1)"),
		"relative":       "/t?url=" + url.QueryEscape("/local/path"),
		"not a url form": "/t?url=" + url.QueryEscape("::::"),
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", target, nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

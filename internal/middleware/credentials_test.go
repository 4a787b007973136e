package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/searchad"
)

func credsApp(fallback searchad.Credentials) (*fiber.App, *searchad.Credentials) {
	app := fiber.New()
	m := NewCredentialsMiddleware(fallback)

	var captured searchad.Credentials
	app.Use(m.RequireCredentials)
	app.Get("/", func(c fiber.Ctx) error {
		creds, ok := Credentials(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		captured = creds
		return c.SendString("ok")
	})
	return app, &captured
}

func TestRequireCredentialsFromHeaders(t *testing.T) {
	app, captured := credsApp(searchad.Credentials{})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderAccessKey, "ak")
	req.Header.Set(HeaderSecretKey, "sk")
	req.Header.Set(HeaderCustomerID, "12345")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if captured.APIKey != "ak" || captured.SecretKey != "sk" || captured.CustomerID != "12345" {
		t.Errorf("captured = %+v", *captured)
	}
}

func TestRequireCredentialsFallsBackToServerCredentials(t *testing.T) {
	fallback := searchad.Credentials{APIKey: "env-ak", SecretKey: "env-sk", CustomerID: "99"}
	app, captured := credsApp(fallback)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if *captured != fallback {
		t.Errorf("captured = %+v, want fallback", *captured)
	}
}

func TestRequireCredentialsRejectsMissing(t *testing.T) {
	app, _ := credsApp(searchad.Credentials{})

	// Partial headers do not count as credentials.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderAccessKey, "ak")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

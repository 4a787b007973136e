package middleware

import (
	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/searchad"
)

// Header names callers use to pass their upstream credentials. The server
// never stores them; each request is signed with what it carries.
const (
	HeaderAccessKey  = "x-naver-access-key"
	HeaderSecretKey  = "x-naver-secret-key"
	HeaderCustomerID = "x-naver-customer-id"
)

// credentialsKey is the Locals slot the extracted credentials live in.
const credentialsKey = "searchad_credentials"

// CredentialsMiddleware extracts per-request upstream credentials. A
// server-wide fallback (from env) may be supplied for deployments that
// serve a single account.
type CredentialsMiddleware struct {
	fallback searchad.Credentials
}

// NewCredentialsMiddleware creates the middleware. Pass a zero Credentials
// value to require headers on every request.
func NewCredentialsMiddleware(fallback searchad.Credentials) *CredentialsMiddleware {
	return &CredentialsMiddleware{fallback: fallback}
}

// RequireCredentials rejects requests that carry no usable credentials.
func (m *CredentialsMiddleware) RequireCredentials(c fiber.Ctx) error {
	creds := searchad.Credentials{
		APIKey:     c.Get(HeaderAccessKey),
		SecretKey:  c.Get(HeaderSecretKey),
		CustomerID: c.Get(HeaderCustomerID),
	}
	if !creds.Valid() {
		creds = m.fallback
	}
	if !creds.Valid() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "missing upstream credentials: set x-naver-access-key, x-naver-secret-key and x-naver-customer-id",
		})
	}

	c.Locals(credentialsKey, creds)
	return c.Next()
}

// Credentials returns the credentials extracted for this request.
func Credentials(c fiber.Ctx) (searchad.Credentials, bool) {
	creds, ok := c.Locals(credentialsKey).(searchad.Credentials)
	return creds, ok
}

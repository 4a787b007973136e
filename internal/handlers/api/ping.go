package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/searchad"
)

// PingHandler verifies upstream credentials via JSON API.
type PingHandler struct{}

// NewPingHandler creates a new API ping handler.
func NewPingHandler() *PingHandler {
	return &PingHandler{}
}

// Ping issues the cheapest authenticated upstream call and reports whether
// the credentials work and whether the account is currently rate limited.
func (h *PingHandler) Ping(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	if err := sa.Ping(c.Context()); err != nil {
		if errors.Is(err, searchad.ErrRateLimited) {
			return jsonSuccess(c, fiber.Map{"reachable": true, "rateLimited": true})
		}
		return upstreamError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"reachable": true, "rateLimited": false})
}

package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/searchad"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// upstreamError translates a gateway failure into the matching HTTP status:
// rate limits pass through as 429, other upstream rejections keep their
// status, and everything else is a bad gateway.
func upstreamError(c fiber.Ctx, err error) error {
	if errors.Is(err, searchad.ErrRateLimited) {
		return jsonError(c, fiber.StatusTooManyRequests, "upstream rate limit exceeded")
	}
	var apiErr *searchad.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return jsonError(c, apiErr.Status, err.Error())
	}
	return jsonError(c, fiber.StatusBadGateway, err.Error())
}

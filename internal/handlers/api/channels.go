package api

import (
	"github.com/gofiber/fiber/v3"
)

// ChannelHandler serves business channel listings via JSON API.
type ChannelHandler struct{}

// NewChannelHandler creates a new API channel handler.
func NewChannelHandler() *ChannelHandler {
	return &ChannelHandler{}
}

// List returns the account's business channels, used when creating
// phone or location extensions.
func (h *ChannelHandler) List(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	channels, err := sa.Channels(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, channels)
}

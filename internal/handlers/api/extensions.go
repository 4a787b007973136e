package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/models"
)

// ExtensionHandler serves ad extension operations via JSON API.
type ExtensionHandler struct{}

// NewExtensionHandler creates a new API extension handler.
func NewExtensionHandler() *ExtensionHandler {
	return &ExtensionHandler{}
}

// List returns the extensions owned by an ad group.
func (h *ExtensionHandler) List(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	ownerID := c.Query("ownerId", "")
	if ownerID == "" {
		return jsonError(c, fiber.StatusBadRequest, "ownerId is required")
	}

	exts, err := sa.Extensions(c.Context(), ownerID)
	if err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, exts)
}

// Create submits one extension to an ad group.
func (h *ExtensionHandler) Create(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		OwnerID         string          `json:"ownerId"`
		Type            string          `json:"type"`
		PCChannelID     string          `json:"pcChannelId"`
		MobileChannelID string          `json:"mobileChannelId"`
		Content         json.RawMessage `json:"adExtension"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.OwnerID == "" {
		return jsonError(c, fiber.StatusBadRequest, "ownerId is required")
	}

	ext, err := models.NewExtension(body.OwnerID, models.ParseExtensionType(body.Type),
		body.PCChannelID, body.MobileChannelID, body.Content)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	created, err := sa.CreateExtension(c.Context(), ext)
	if err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, created)
}

// Delete removes an extension.
func (h *ExtensionHandler) Delete(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	if err := sa.DeleteExtension(c.Context(), c.Params("id")); err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"deleted": c.Params("id")})
}

// SetStatus pauses or resumes an extension.
func (h *ExtensionHandler) SetStatus(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		Paused bool `json:"paused"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := sa.SetExtensionUserLock(c.Context(), c.Params("id"), body.Paused); err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"id": c.Params("id"), "paused": body.Paused})
}

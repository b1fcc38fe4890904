package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/tour-member/internal/model"
)

// BadgeServiceInterface defines the badge source reads.
type BadgeServiceInterface interface {
	Tabs(ctx context.Context) ([]model.BadgeSource, error)
	Festivals(ctx context.Context) ([]model.BadgeSource, error)
}

// BadgeHandler serves the public badge collections.
type BadgeHandler struct {
	service BadgeServiceInterface
}

// NewBadgeHandler creates a new BadgeHandler.
func NewBadgeHandler(svc BadgeServiceInterface) *BadgeHandler {
	return &BadgeHandler{service: svc}
}

// Tabs handles GET /api/badges/tabs.
func (h *BadgeHandler) Tabs(c *fiber.Ctx) error {
	return h.respond(c, h.service.Tabs)
}

// Festivals handles GET /api/badges/festivals.
func (h *BadgeHandler) Festivals(c *fiber.Ctx) error {
	return h.respond(c, h.service.Festivals)
}

func (h *BadgeHandler) respond(c *fiber.Ctx, fetch func(context.Context) ([]model.BadgeSource, error)) error {
	badges, err := fetch(c.Context())
	if err != nil {
		logRequestError(c, err).Msg("failed to list badges")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(badges)
}

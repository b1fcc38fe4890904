package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/internal/service"
)

// FavoriteServiceInterface defines the favorites business logic.
type FavoriteServiceInterface interface {
	IDs(ctx context.Context, memberID int64) ([]int64, error)
	Toggle(ctx context.Context, memberID, tourID int64) (bool, error)
}

// FavoriteHandler handles the member favorites endpoints.
type FavoriteHandler struct {
	service   FavoriteServiceInterface
	validator *validator.Validate
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(svc FavoriteServiceInterface, v *validator.Validate) *FavoriteHandler {
	return &FavoriteHandler{service: svc, validator: v}
}

// List handles GET /api/member/favorites.
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	ids, err := h.service.IDs(c.Context(), MemberID(c))
	if err != nil {
		logRequestError(c, err).Msg("failed to list favorites")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(model.FavoriteIDsResponse{TourIDs: ids})
}

// Toggle handles POST /api/member/favorites/toggle.
func (h *FavoriteHandler) Toggle(c *fiber.Ctx) error {
	var req model.ToggleFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	memberID := MemberID(c)
	favorited, err := h.service.Toggle(c.Context(), memberID, *req.TourID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		logRequestError(c, err).Int64("tour_id", *req.TourID).Msg("failed to toggle favorite")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int64("member_id", memberID).
		Int64("tour_id", *req.TourID).
		Bool("favorited", favorited).
		Msg("favorite toggled")

	return c.JSON(model.ToggleFavoriteResponse{TourID: *req.TourID, Favorited: favorited})
}

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

// ClaimServiceInterface defines the interface for claim business logic.
type ClaimServiceInterface interface {
	Claim(ctx context.Context, memberID, promotionID int64) (string, error)
}

// ClaimHandler handles HTTP requests for claim operations.
type ClaimHandler struct {
	service   ClaimServiceInterface
	validator *validator.Validate
}

// NewClaimHandler creates a new ClaimHandler with the given service and validator.
func NewClaimHandler(svc ClaimServiceInterface, v *validator.Validate) *ClaimHandler {
	return &ClaimHandler{service: svc, validator: v}
}

// Claim handles POST /api/member/notifications/claim. Rejections carry a
// message the client shows as is.
func (h *ClaimHandler) Claim(c *fiber.Ctx) error {
	var req model.ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return rejectClaim(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return rejectClaim(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	memberID := MemberID(c)
	code, err := h.service.Claim(c.Context(), memberID, *req.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			return rejectClaim(c, fiber.StatusNotFound, "promotion not found")
		case errors.Is(err, service.ErrPromotionNotStarted):
			return rejectClaim(c, fiber.StatusBadRequest, "promotion has not started yet")
		case errors.Is(err, service.ErrPromotionExpired):
			return rejectClaim(c, fiber.StatusBadRequest, "promotion has expired")
		case errors.Is(err, service.ErrPromotionExhausted):
			return rejectClaim(c, fiber.StatusBadRequest, "promotion quota exhausted")
		case errors.Is(err, service.ErrAlreadyClaimed):
			return rejectClaim(c, fiber.StatusConflict, "promotion already claimed")
		case errors.Is(err, service.ErrInvalidRequest):
			return rejectClaim(c, fiber.StatusBadRequest, "invalid request")
		}
		logRequestError(c, err).Int64("notification_id", *req.ID).Msg("failed to claim promotion")
		return rejectClaim(c, fiber.StatusInternalServerError, "internal server error")
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int64("member_id", memberID).
		Int64("notification_id", *req.ID).
		Msg("promotion claimed")

	return c.JSON(model.ClaimResponse{Success: true, ClaimCode: code})
}

func rejectClaim(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(model.ClaimResponse{Success: false, Message: message})
}

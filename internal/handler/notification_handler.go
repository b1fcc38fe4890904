package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/internal/service"
)

// NotificationServiceInterface defines the notification read logic.
type NotificationServiceInterface interface {
	List(ctx context.Context, memberID int64, typ string) (*model.NotificationListResponse, error)
	Get(ctx context.Context, memberID, id int64) (*model.Notification, error)
	MarkAllRead(ctx context.Context, memberID int64) error
}

// NotificationHandler handles the member notification endpoints.
type NotificationHandler struct {
	service   NotificationServiceInterface
	validator *validator.Validate
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc NotificationServiceInterface, v *validator.Validate) *NotificationHandler {
	return &NotificationHandler{service: svc, validator: v}
}

// List handles GET /api/member/notifications with an optional ?type= filter.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	var q model.ListNotificationsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid query"})
	}
	if err := h.validator.Struct(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	resp, err := h.service.List(c.Context(), MemberID(c), q.Type)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		logRequestError(c, err).Msg("failed to list notifications")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(resp)
}

// Get handles GET /api/member/notifications/:id and marks the notice read.
func (h *NotificationHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id is invalid"})
	}

	n, err := h.service.Get(c.Context(), MemberID(c), int64(id))
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found"})
		}
		logRequestError(c, err).Int("notification_id", id).Msg("failed to get notification")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(n)
}

// MarkAllRead handles POST /api/member/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.service.MarkAllRead(c.Context(), MemberID(c)); err != nil {
		logRequestError(c, err).Msg("failed to mark notifications read")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

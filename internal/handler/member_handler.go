package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/tour-member/internal/model"
)

// Me handles GET /api/member/me.
func Me(c *fiber.Ctx) error {
	return c.JSON(model.MemberResponse{MemberID: MemberID(c)})
}

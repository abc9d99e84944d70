package user

import (
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

// GetMe godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Success 200 {object} User
// @Failure 404 {object} map[string]string "User not found"
// @Router /api/users/me [get]
func (c *UserController) GetMe(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	usr, err := c.Service.GetProfile(ctx.UserContext(), claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return ctx.JSON(usr)
}

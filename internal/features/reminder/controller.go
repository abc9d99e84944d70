package reminder

import (
	"github.com/gofiber/fiber/v2"
)

type ReminderController struct {
	Service ReminderService
}

func NewReminderController(service ReminderService) *ReminderController {
	return &ReminderController{Service: service}
}

// Run godoc
// @Summary Trigger the reminder sweep immediately
// @Tags reminders
// @Produce json
// @Success 200 {object} map[string]int
// @Router /api/reminders/run [post]
func (c *ReminderController) Run(ctx *fiber.Ctx) error {
	reminded, err := c.Service.RunOnce(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"reminded": reminded})
}

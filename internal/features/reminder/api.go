package reminder

import (
	"go-payables/internal/config"
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReminderApi struct {
	controller *ReminderController
	config     *config.Config
}

func NewReminderApi(controller *ReminderController, config *config.Config) *ReminderApi {
	return &ReminderApi{
		controller: controller,
		config:     config,
	}
}

func (h *ReminderApi) Setup(app *fiber.App) {
	group := app.Group("/api/reminders", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/run", h.controller.Run)
}

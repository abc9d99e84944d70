package payable

import (
	"go-payables/internal/config"
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PayableApi struct {
	controller *PayableController
	config     *config.Config
}

func NewPayableApi(controller *PayableController, config *config.Config) *PayableApi {
	return &PayableApi{
		controller: controller,
		config:     config,
	}
}

func (h *PayableApi) Setup(app *fiber.App) {
	payables := app.Group("/api/payables", middleware.AuthMiddleware(h.config.SkipAuth))

	payables.Post("/", h.controller.CreatePayable)
	payables.Get("/", h.controller.ListPayables)
	payables.Get("/:id", h.controller.GetPayable)
	payables.Post("/:id/submit", h.controller.SubmitPayable)
	payables.Delete("/:id", h.controller.CancelPayable)
}

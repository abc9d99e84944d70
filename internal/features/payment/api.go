package payment

import (
	"go-payables/internal/config"
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PaymentApi struct {
	controller *PaymentController
	config     *config.Config
}

func NewPaymentApi(controller *PaymentController, config *config.Config) *PaymentApi {
	return &PaymentApi{
		controller: controller,
		config:     config,
	}
}

func (h *PaymentApi) Setup(app *fiber.App) {
	payments := app.Group("/api/payments", middleware.AuthMiddleware(h.config.SkipAuth))

	payments.Post("/", h.controller.Settle)
	payments.Get("/", h.controller.List)
	payments.Get("/payable/:payableId", h.controller.GetForPayable)
}

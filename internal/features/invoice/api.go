package invoice

import (
	"go-payables/internal/config"
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InvoiceApi struct {
	controller *InvoiceController
	config     *config.Config
}

func NewInvoiceApi(controller *InvoiceController, config *config.Config) *InvoiceApi {
	return &InvoiceApi{
		controller: controller,
		config:     config,
	}
}

func (h *InvoiceApi) Setup(app *fiber.App) {
	invoices := app.Group("/api/invoices", middleware.AuthMiddleware(h.config.SkipAuth))

	invoices.Post("/", h.controller.CreateInvoice)
	invoices.Get("/", h.controller.ListInvoices)
	invoices.Get("/:id", h.controller.GetInvoice)
	invoices.Post("/:id/send", h.controller.SendInvoice)
	invoices.Delete("/:id", h.controller.CancelInvoice)
}

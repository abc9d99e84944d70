package invoice

import (
	"errors"

	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InvoiceController struct {
	Service InvoiceService
}

func NewInvoiceController(service InvoiceService) *InvoiceController {
	return &InvoiceController{Service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNotMember):
		return fiber.StatusForbidden
	case errors.Is(err, ErrBadState):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// CreateInvoice godoc
// @Summary Create a draft invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body CreateInvoiceInput true "Invoice"
// @Success 201 {object} Invoice
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /api/invoices [post]
func (c *InvoiceController) CreateInvoice(ctx *fiber.Ctx) error {
	var input CreateInvoiceInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := middleware.Claims(ctx)

	inv, err := c.Service.Create(ctx.UserContext(), claims.UserID, input)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(inv)
}

// SendInvoice godoc
// @Summary Send a draft invoice to its client
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Invoice
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Router /api/invoices/{id}/send [post]
func (c *InvoiceController) SendInvoice(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	inv, err := c.Service.Send(ctx.UserContext(), claims.UserID, ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(inv)
}

// GetInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Invoice
// @Failure 404 {object} map[string]string "Invoice not found"
// @Router /api/invoices/{id} [get]
func (c *InvoiceController) GetInvoice(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	inv, err := c.Service.Get(ctx.UserContext(), claims.UserID, ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(inv)
}

// ListInvoices godoc
// @Summary List an organization's invoices
// @Tags invoices
// @Produce json
// @Param orgId query string true "Organization ID"
// @Success 200 {array} Invoice
// @Router /api/invoices [get]
func (c *InvoiceController) ListInvoices(ctx *fiber.Ctx) error {
	orgID := ctx.Query("orgId")
	if orgID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "orgId query parameter required"})
	}

	claims := middleware.Claims(ctx)

	invoices, err := c.Service.List(ctx.UserContext(), claims.UserID, orgID)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(invoices)
}

// CancelInvoice godoc
// @Summary Cancel an unpaid invoice
// @Tags invoices
// @Param id path string true "Invoice ID"
// @Success 204 {object} nil "No Content"
// @Failure 409 {object} map[string]string "Invoice already paid"
// @Router /api/invoices/{id} [delete]
func (c *InvoiceController) CancelInvoice(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	if err := c.Service.Cancel(ctx.UserContext(), claims.UserID, ctx.Params("id")); err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

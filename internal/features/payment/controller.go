package payment

import (
	"errors"

	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PaymentController struct {
	Service PaymentService
}

func NewPaymentController(service PaymentService) *PaymentController {
	return &PaymentController{Service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotApproved), errors.Is(err, ErrAlreadyPaid):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Settle godoc
// @Summary Settle an approved payable
// @Tags payments
// @Accept json
// @Produce json
// @Param payment body SettleInput true "Settlement"
// @Success 201 {object} Payment
// @Failure 409 {object} map[string]string "Payable not approved or already paid"
// @Router /api/payments [post]
func (c *PaymentController) Settle(ctx *fiber.Ctx) error {
	var input SettleInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := middleware.Claims(ctx)

	pay, err := c.Service.Settle(ctx.UserContext(), claims.UserID, input)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(pay)
}

// List godoc
// @Summary List an organization's payments
// @Tags payments
// @Produce json
// @Param orgId query string true "Organization ID"
// @Success 200 {array} Payment
// @Router /api/payments [get]
func (c *PaymentController) List(ctx *fiber.Ctx) error {
	orgID := ctx.Query("orgId")
	if orgID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "orgId query parameter required"})
	}

	claims := middleware.Claims(ctx)

	payments, err := c.Service.List(ctx.UserContext(), claims.UserID, orgID)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(payments)
}

// GetForPayable godoc
// @Summary Get the payment settling a payable
// @Tags payments
// @Produce json
// @Param payableId path string true "Payable ID"
// @Success 200 {object} Payment
// @Failure 404 {object} map[string]string "Payable not found"
// @Router /api/payments/payable/{payableId} [get]
func (c *PaymentController) GetForPayable(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	pay, err := c.Service.GetForPayable(ctx.UserContext(), claims.UserID, ctx.Params("payableId"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if pay == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No payment recorded for payable"})
	}
	return ctx.JSON(pay)
}

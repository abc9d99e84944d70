package payable

import (
	"errors"

	"go-payables/internal/features/approval"
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PayableController struct {
	Service PayableService
}

func NewPayableController(service PayableService) *PayableController {
	return &PayableController{Service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNotMember):
		return fiber.StatusForbidden
	case errors.Is(err, ErrBadState):
		return fiber.StatusConflict
	case errors.Is(err, approval.ErrConfiguration):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// CreatePayable godoc
// @Summary Create a payable and route it through approval
// @Tags payables
// @Accept json
// @Produce json
// @Param payable body CreatePayableInput true "Payable"
// @Success 201 {object} Payable
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 422 {object} map[string]string "No eligible approvers configured"
// @Router /api/payables [post]
func (c *PayableController) CreatePayable(ctx *fiber.Ctx) error {
	var input CreatePayableInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := middleware.Claims(ctx)

	p, err := c.Service.Create(ctx.UserContext(), claims.UserID, input)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(p)
}

// SubmitPayable godoc
// @Summary Re-submit a draft payable for approval
// @Tags payables
// @Produce json
// @Param id path string true "Payable ID"
// @Success 200 {object} Payable
// @Failure 409 {object} map[string]string "Payable is not a draft"
// @Router /api/payables/{id}/submit [post]
func (c *PayableController) SubmitPayable(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	p, err := c.Service.Submit(ctx.UserContext(), claims.UserID, ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(p)
}

// GetPayable godoc
// @Summary Get a payable
// @Tags payables
// @Produce json
// @Param id path string true "Payable ID"
// @Success 200 {object} Payable
// @Failure 404 {object} map[string]string "Payable not found"
// @Router /api/payables/{id} [get]
func (c *PayableController) GetPayable(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	p, err := c.Service.Get(ctx.UserContext(), claims.UserID, ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(p)
}

// ListPayables godoc
// @Summary List an organization's payables
// @Tags payables
// @Produce json
// @Param orgId query string true "Organization ID"
// @Success 200 {array} Payable
// @Router /api/payables [get]
func (c *PayableController) ListPayables(ctx *fiber.Ctx) error {
	orgID := ctx.Query("orgId")
	if orgID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "orgId query parameter required"})
	}

	claims := middleware.Claims(ctx)

	payables, err := c.Service.List(ctx.UserContext(), claims.UserID, orgID)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(payables)
}

// CancelPayable godoc
// @Summary Cancel an unpaid payable
// @Tags payables
// @Param id path string true "Payable ID"
// @Success 204 {object} nil "No Content"
// @Failure 409 {object} map[string]string "Payable already paid"
// @Router /api/payables/{id} [delete]
func (c *PayableController) CancelPayable(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	if err := c.Service.Cancel(ctx.UserContext(), claims.UserID, ctx.Params("id")); err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

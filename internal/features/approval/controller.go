package approval

import (
	"errors"

	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalController struct {
	Service ApprovalService
}

func NewApprovalController(service ApprovalService) *ApprovalController {
	return &ApprovalController{Service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, ErrConfiguration):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

type decisionBody struct {
	Comments string `json:"comments"`
}

// Approve godoc
// @Summary Approve the current step of a workflow
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param body body decisionBody false "Optional comments"
// @Success 200 {object} ApprovalWorkflow
// @Failure 403 {object} map[string]string "Not the current step approver"
// @Failure 404 {object} map[string]string "Workflow not found"
// @Failure 409 {object} map[string]string "Workflow not pending"
// @Router /api/approvals/{id}/approve [post]
func (c *ApprovalController) Approve(ctx *fiber.Ctx) error {
	return c.decide(ctx, DecisionApproved)
}

// Reject godoc
// @Summary Reject the current step of a workflow
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param body body decisionBody false "Optional comments"
// @Success 200 {object} ApprovalWorkflow
// @Failure 403 {object} map[string]string "Not the current step approver"
// @Failure 404 {object} map[string]string "Workflow not found"
// @Failure 409 {object} map[string]string "Workflow not pending"
// @Router /api/approvals/{id}/reject [post]
func (c *ApprovalController) Reject(ctx *fiber.Ctx) error {
	return c.decide(ctx, DecisionRejected)
}

func (c *ApprovalController) decide(ctx *fiber.Ctx, decision Decision) error {
	var body decisionBody
	_ = ctx.BodyParser(&body)

	claims := middleware.Claims(ctx)

	workflow, err := c.Service.RecordDecision(ctx.UserContext(), ctx.Params("id"), claims.UserID, decision, body.Comments)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(workflow)
}

// GetWorkflow godoc
// @Summary Get a workflow by ID
// @Tags approvals
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} ApprovalWorkflow
// @Failure 404 {object} map[string]string "Workflow not found"
// @Router /api/approvals/{id} [get]
func (c *ApprovalController) GetWorkflow(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	workflow, err := c.Service.GetByID(ctx.UserContext(), claims.UserID, ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(workflow)
}

// GetWorkflowByPayable godoc
// @Summary Get the workflow attached to a payable
// @Tags approvals
// @Produce json
// @Param payableId path string true "Payable ID"
// @Success 200 {object} ApprovalWorkflow
// @Failure 404 {object} map[string]string "Workflow not found"
// @Router /api/approvals/payable/{payableId} [get]
func (c *ApprovalController) GetWorkflowByPayable(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	workflow, err := c.Service.GetByPayable(ctx.UserContext(), claims.UserID, ctx.Params("payableId"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(workflow)
}

// ListPending godoc
// @Summary List workflows awaiting the acting user's decision
// @Tags approvals
// @Produce json
// @Success 200 {array} ApprovalWorkflow
// @Router /api/approvals/pending [get]
func (c *ApprovalController) ListPending(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	workflows, err := c.Service.PendingForUser(ctx.UserContext(), claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(workflows)
}

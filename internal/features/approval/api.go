package approval

import (
	"go-payables/internal/config"
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalApi struct {
	controller *ApprovalController
	config     *config.Config
}

func NewApprovalApi(controller *ApprovalController, config *config.Config) *ApprovalApi {
	return &ApprovalApi{
		controller: controller,
		config:     config,
	}
}

func (h *ApprovalApi) Setup(app *fiber.App) {
	approvals := app.Group("/api/approvals", middleware.AuthMiddleware(h.config.SkipAuth))

	approvals.Get("/pending", h.controller.ListPending)
	approvals.Get("/payable/:payableId", h.controller.GetWorkflowByPayable)
	approvals.Get("/:id", h.controller.GetWorkflow)
	approvals.Post("/:id/approve", h.controller.Approve)
	approvals.Post("/:id/reject", h.controller.Reject)
}

package organization

import (
	"go-payables/internal/config"
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type OrganizationApi struct {
	controller *OrganizationController
	config     *config.Config
}

func NewOrganizationApi(controller *OrganizationController, config *config.Config) *OrganizationApi {
	return &OrganizationApi{
		controller: controller,
		config:     config,
	}
}

func (h *OrganizationApi) Setup(app *fiber.App) {
	orgs := app.Group("/api/organizations", middleware.AuthMiddleware(h.config.SkipAuth))

	orgs.Post("/", h.controller.CreateOrganization)
	orgs.Get("/", h.controller.ListOrganizations)
	orgs.Get("/:id", h.controller.GetOrganization)

	orgs.Post("/:id/members", h.controller.AddMember)
	orgs.Put("/:id/members/:userId", h.controller.UpdateMemberRole)
	orgs.Delete("/:id/members/:userId", h.controller.RemoveMember)

	orgs.Get("/:id/approval-settings", h.controller.GetApprovalSettings)
	orgs.Put("/:id/approval-settings", h.controller.UpdateApprovalSettings)
}

package audit

import (
	"go-payables/internal/config"
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
}

func NewAuditApi(controller *AuditController, config *config.Config) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	group := app.Group("/api/organizations/:orgId/audit", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListAuditLogs)
}

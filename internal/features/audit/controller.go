package audit

import (
	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListAuditLogs godoc
// @Summary List recent audit log entries for an organization
// @Tags audit
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param limit query int false "Max entries (default 100)"
// @Success 200 {array} AuditLog
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/organizations/{orgId}/audit [get]
func (c *AuditController) ListAuditLogs(ctx *fiber.Ctx) error {
	orgID := ctx.Params("orgId")
	limit := int64(ctx.QueryInt("limit", 100))

	entries, err := c.Service.List(ctx.UserContext(), orgID, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(entries)
}

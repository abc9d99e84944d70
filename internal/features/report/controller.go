package report

import (
	"errors"
	"fmt"

	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	Service ReportService
}

func NewReportController(service ReportService) *ReportController {
	return &ReportController{Service: service}
}

// ExportPayables godoc
// @Summary Download an organization's payables as an XLSX workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param orgId path string true "Organization ID"
// @Success 200 {file} binary
// @Failure 403 {object} map[string]string "Not a member"
// @Router /api/reports/payables/{orgId} [get]
func (c *ReportController) ExportPayables(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	data, filename, err := c.Service.ExportPayables(ctx.UserContext(), claims.UserID, ctx.Params("orgId"))
	if err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, ErrNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, ErrNotMember):
			status = fiber.StatusForbidden
		}
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(data)
}

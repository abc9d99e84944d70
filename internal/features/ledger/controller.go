package ledger

import (
	"errors"

	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LedgerController struct {
	Service LedgerService
}

func NewLedgerController(service LedgerService) *LedgerController {
	return &LedgerController{Service: service}
}

// Export godoc
// @Summary Export approved payables to the external ledger
// @Tags ledger
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 422 {object} map[string]string "Ledger export not configured"
// @Router /api/ledger/export [post]
func (c *LedgerController) Export(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	processed, err := c.Service.Export(ctx.UserContext(), claims.UserID)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrNotConfigured) {
			status = fiber.StatusUnprocessableEntity
		}
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"processed": processed})
}

// ListRuns godoc
// @Summary List recent ledger export runs
// @Tags ledger
// @Produce json
// @Param limit query int false "Max runs (default 20)"
// @Success 200 {array} ExportRun
// @Router /api/ledger/runs [get]
func (c *LedgerController) ListRuns(ctx *fiber.Ctx) error {
	limit := int64(ctx.QueryInt("limit", 20))

	runs, err := c.Service.ListRuns(ctx.UserContext(), limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(runs)
}

package ledger

import (
	"go-payables/internal/config"
	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LedgerApi struct {
	controller *LedgerController
	config     *config.Config
}

func NewLedgerApi(controller *LedgerController, config *config.Config) *LedgerApi {
	return &LedgerApi{
		controller: controller,
		config:     config,
	}
}

func (h *LedgerApi) Setup(app *fiber.App) {
	group := app.Group("/api/ledger", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/export", h.controller.Export)
	group.Get("/runs", h.controller.ListRuns)
}

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-payables/internal/common/api"
	"go-payables/internal/config"
	"go-payables/internal/database"
	"go-payables/internal/features/approval"
	"go-payables/internal/features/audit"
	"go-payables/internal/features/auth"
	"go-payables/internal/features/email"
	"go-payables/internal/features/invoice"
	"go-payables/internal/features/ledger"
	"go-payables/internal/features/notification"
	"go-payables/internal/features/organization"
	"go-payables/internal/features/payable"
	"go-payables/internal/features/payment"
	"go-payables/internal/features/reminder"
	"go-payables/internal/features/report"
	"go-payables/internal/features/system"
	"go-payables/internal/features/user"
	"go-payables/internal/logger"
	"go-payables/internal/middleware"
	"go-payables/pkg/utils"

	_ "go-payables/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, approvalRepo approval.ApprovalRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := approvalRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure approval indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// @title           Payables API
// @version         1.0
// @description     Multi-tenant accounts payable backend with approval workflows.

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			user.NewUserRepository,
			organization.NewOrganizationRepository,
			audit.NewAuditRepository,
			approval.NewApprovalRepository,
			payable.NewPayableRepository,
			invoice.NewInvoiceRepository,
			payment.NewPaymentRepository,
			notification.NewNotificationRepository,
			email.NewEmailRepository,
			ledger.NewExportRunRepository,

			// Initialize Service
			audit.NewAuditService,
			user.NewUserService,
			organization.NewOrganizationService,
			auth.NewAuthService,
			email.NewEmailService,
			notification.NewHub,
			notification.NewNotificationService,
			approval.NewApprovalService,
			payable.NewPayableService,
			invoice.NewInvoiceService,
			payment.NewPaymentService,
			ledger.NewLedgerService,
			report.NewReportService,
			reminder.NewReminderService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(r payable.PayableRepository) approval.PayableStore { return r },
			func(s notification.NotificationService) approval.Notifier { return s },

			// Initialize Controller
			auth.NewAuthController,
			user.NewUserController,
			organization.NewOrganizationController,
			audit.NewAuditController,
			approval.NewApprovalController,
			payable.NewPayableController,
			invoice.NewInvoiceController,
			payment.NewPaymentController,
			notification.NewNotificationController,
			ledger.NewLedgerController,
			report.NewReportController,
			reminder.NewReminderController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(organization.NewOrganizationApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(approval.NewApprovalApi),
			AsRoute(payable.NewPayableApi),
			AsRoute(invoice.NewInvoiceApi),
			AsRoute(payment.NewPaymentApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(ledger.NewLedgerApi),
			AsRoute(report.NewReportApi),
			AsRoute(reminder.NewReminderApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) {
				utils.SetSecret(cfg.JWTSecret)
			},

			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, reminderService reminder.ReminderService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return reminderService.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return reminderService.StopScheduler()
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}

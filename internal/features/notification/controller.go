package notification

import (
	"strconv"

	"go-payables/internal/middleware"
	"go-payables/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type NotificationController struct {
	Service NotificationService
	Hub     *Hub
	Logger  *zap.Logger
}

func NewNotificationController(service NotificationService, hub *Hub, logger *zap.Logger) *NotificationController {
	return &NotificationController{
		Service: service,
		Hub:     hub,
		Logger:  logger,
	}
}

// List godoc
// @Summary List the caller's notifications
// @Tags notifications
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	page, _ := strconv.ParseInt(ctx.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(ctx.Query("limit", "10"), 10, 64)

	notifications, total, err := c.Service.GetUserNotifications(ctx.UserContext(), claims.UserID, page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"data":  notifications,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUnreadCount godoc
// @Summary Count the caller's unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /api/notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	count, err := c.Service.GetUnreadCount(ctx.UserContext(), claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"count": count})
}

// MarkAsRead godoc
// @Summary Mark one notification as read
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Router /api/notifications/{id}/read [put]
func (c *NotificationController) MarkAsRead(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id := ctx.Params("id")
	if err := c.Service.MarkAsRead(ctx.UserContext(), id, claims.UserID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"status": "success"})
}

// MarkAllAsRead godoc
// @Summary Mark all of the caller's notifications as read
// @Tags notifications
// @Success 200 {object} map[string]string
// @Router /api/notifications/mark-all-read [post]
func (c *NotificationController) MarkAllAsRead(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := c.Service.MarkAllAsRead(ctx.UserContext(), claims.UserID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"status": "success"})
}

// HandleWebSocket keeps the connection registered with the hub until the
// client goes away. Auth happens via the token query parameter because
// browsers cannot set headers on websocket upgrades.
func (c *NotificationController) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("userID").(string)
	if userID == "" {
		conn.Close()
		return
	}

	c.Hub.Register(userID, conn)
	defer func() {
		c.Hub.Unregister(userID, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// UpgradeGuard rejects non-websocket requests and resolves the token before
// the upgrade happens.
func (c *NotificationController) UpgradeGuard(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	token := ctx.Query("token")
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	ctx.Locals("userID", claims.UserID)
	return ctx.Next()
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sondeo-mx/sondeo-api/internal/domain/repositories"
)

// NotificationHandler atiende la consulta del historial de notificaciones
type NotificationHandler struct {
	notificationRepo *repositories.NotificationRepository
}

// NewNotificationHandler crea una nueva instancia de NotificationHandler
func NewNotificationHandler(notificationRepo *repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
	}
}

// GetNotifications lista las notificaciones recientes del negocio con
// paginación
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	tenantID := c.Query("tenant_id", "")
	if tenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El parámetro 'tenant_id' es obligatorio",
		})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	notifications, total, err := h.notificationRepo.GetNotifications(tenantID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

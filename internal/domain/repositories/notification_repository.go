package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
)

// NotificationRepository implementa el acceso a notificaciones internas
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository crea una nueva instancia de NotificationRepository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{
		db: db,
	}
}

// CreateNotification persiste un registro write-once de notificación
func (r *NotificationRepository) CreateNotification(notification *entities.Notification) error {
	if err := r.db.Create(notification).Error; err != nil {
		return fmt.Errorf("error al crear notificación: %w", err)
	}
	return nil
}

// GetNotifications lista las notificaciones recientes de un negocio con
// paginación
func (r *NotificationRepository) GetNotifications(tenantID string, page, limit int) ([]entities.Notification, int64, error) {
	var notifications []entities.Notification
	var total int64

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	query := r.db.Model(&entities.Notification{}).Where("tenant_id = ?", tenantID)

	// Contar total antes de paginar
	query.Count(&total)

	offset := (page - 1) * limit
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error al buscar notificaciones: %w", err)
	}

	return notifications, total, nil
}

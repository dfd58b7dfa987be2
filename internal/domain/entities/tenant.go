package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// NotificationPrefs indica por qué canales quiere avisos el negocio
type NotificationPrefs struct {
	WhatsApp bool `json:"whatsapp"`
	Email    bool `json:"email"`
}

// Value implementa driver.Valuer para persistir las preferencias como JSONB
func (p NotificationPrefs) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implementa sql.Scanner para leer las preferencias desde JSONB
func (p *NotificationPrefs) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// TenantSettings es la configuración global del negocio (solo lectura
// para el motor: el CRM la administra)
type TenantSettings struct {
	TenantID                string            `json:"tenant_id" gorm:"primaryKey;column:tenant_id;type:uuid"`
	Phone                   string            `json:"phone,omitempty" gorm:"column:phone"`
	NotificationPreferences NotificationPrefs `json:"notification_preferences" gorm:"column:notification_preferences;type:jsonb"`
	CreatedAt               time.Time         `json:"created_at" gorm:"column:created_at"`
	UpdatedAt               time.Time         `json:"updated_at" gorm:"column:updated_at"`
}

// TableName fija el nombre de tabla para GORM
func (TenantSettings) TableName() string {
	return "tenant_settings"
}

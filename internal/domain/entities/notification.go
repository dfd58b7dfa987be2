package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Tipos de notificación interna
const (
	NotificationCrisis      = "CRISIS"
	NotificationSystem      = "SYSTEM"
	NotificationInfo        = "INFO"
	NotificationAchievement = "ACHIEVEMENT"
)

// JSONMap es un mapa arbitrario persistido como JSONB (metadata)
type JSONMap map[string]interface{}

// Value implementa driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(JSONMap{})
	}
	return json.Marshal(m)
}

// Scan implementa sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// Notification es el registro interno que ve el staff del negocio.
// Write-once: se crea y nunca se actualiza.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id;type:uuid"`
	TenantID  string    `json:"tenant_id" gorm:"column:tenant_id;type:uuid;index"`
	Type      string    `json:"type" gorm:"column:type"`
	Title     string    `json:"title" gorm:"column:title"`
	Message   string    `json:"message" gorm:"column:message"`
	Meta      JSONMap   `json:"meta" gorm:"column:meta;type:jsonb"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;index"`
}

package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Tipos de pregunta soportados por el motor
const (
	QuestionRating = "RATING"
	QuestionEmoji  = "EMOJI"
	QuestionText   = "TEXT"
	QuestionSelect = "SELECT"
	QuestionYesNo  = "YES_NO"
	QuestionPhone  = "PHONE"
	QuestionEmail  = "EMAIL"
	QuestionImage  = "IMAGE"
	QuestionFile   = "FILE"
)

// DefaultAlertThreshold se usa cuando la encuesta no define umbral propio
const DefaultAlertThreshold = 2

// Survey representa una encuesta de satisfacción de un negocio
type Survey struct {
	ID             string         `json:"id" gorm:"primaryKey;column:id;type:uuid"`
	TenantID       string         `json:"tenant_id" gorm:"column:tenant_id;type:uuid;index"`
	Title          string         `json:"title" gorm:"column:title"`
	AlertConfig    AlertConfig    `json:"alert_config" gorm:"column:alert_config;type:jsonb"`
	RecoveryConfig RecoveryConfig `json:"recovery_config" gorm:"column:recovery_config;type:jsonb"`
	CreatedAt      time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"column:updated_at"`

	// Relaciones
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:SurveyID"`
}

// Question representa una pregunta de la encuesta
type Question struct {
	ID       string `json:"id" gorm:"primaryKey;column:id;type:uuid"`
	SurveyID string `json:"survey_id" gorm:"column:survey_id;type:uuid;index"`
	Type     string `json:"type" gorm:"column:type"`
	Text     string `json:"text" gorm:"column:text"`
	Position int    `json:"position" gorm:"column:position"`
}

// AlertConfig es la configuración de alertas de crisis de una encuesta.
// Se persiste como JSONB dentro del registro de la encuesta.
type AlertConfig struct {
	Enabled   bool     `json:"enabled"`
	Threshold int      `json:"threshold"`
	Phones    []string `json:"phones"`
	Emails    []string `json:"emails"`
}

// EffectiveThreshold devuelve el umbral configurado o el default (2)
func (a AlertConfig) EffectiveThreshold() int {
	if a.Threshold <= 0 {
		return DefaultAlertThreshold
	}
	return a.Threshold
}

// RecoveryTier es un nivel de recompensa (bad/neutral/good)
type RecoveryTier struct {
	Enabled bool   `json:"enabled"`
	Offer   string `json:"offer"`
	Code    string `json:"code"`
}

// RecoveryConfig es la configuración de recompensas de recuperación.
// Los campos planos Enabled/Offer/Code son el formato legado previo a los
// niveles; se conservan como fallback cuando el nivel "bad" está apagado.
type RecoveryConfig struct {
	Enabled bool         `json:"enabled"`
	Offer   string       `json:"offer"`
	Code    string       `json:"code"`
	Bad     RecoveryTier `json:"bad"`
	Neutral RecoveryTier `json:"neutral"`
	Good    RecoveryTier `json:"good"`
}

// Value implementa driver.Valuer para persistir AlertConfig como JSONB
func (a AlertConfig) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implementa sql.Scanner para leer AlertConfig desde JSONB
func (a *AlertConfig) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// Value implementa driver.Valuer para persistir RecoveryConfig como JSONB
func (r RecoveryConfig) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implementa sql.Scanner para leer RecoveryConfig desde JSONB
func (r *RecoveryConfig) Scan(value interface{}) error {
	return scanJSON(value, r)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("tipo inesperado para columna jsonb: %T", value)
	}
}

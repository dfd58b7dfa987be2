package entities

import (
	"time"
)

// Response representa una respuesta completa de un cliente a una encuesta.
// Es append-only: el motor nunca la modifica después de creada.
type Response struct {
	ID             string    `json:"id" gorm:"primaryKey;column:id;type:uuid"`
	SurveyID       string    `json:"survey_id" gorm:"column:survey_id;type:uuid;index"`
	CustomerName   string    `json:"customer_name,omitempty" gorm:"column:customer_name"`
	CustomerPhone  string    `json:"customer_phone,omitempty" gorm:"column:customer_phone"`
	CustomerEmail  string    `json:"customer_email,omitempty" gorm:"column:customer_email"`
	CustomerSource string    `json:"customer_source,omitempty" gorm:"column:customer_source"`
	Photo          string    `json:"photo,omitempty" gorm:"column:photo"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;index"`

	// Relaciones
	Survey  Survey   `json:"survey,omitempty" gorm:"foreignKey:SurveyID"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:ResponseID"`
}

// Answer representa la respuesta individual a una pregunta
type Answer struct {
	ID         string `json:"id" gorm:"primaryKey;column:id;type:uuid"`
	ResponseID string `json:"response_id" gorm:"column:response_id;type:uuid;index"`
	QuestionID string `json:"question_id" gorm:"column:question_id;type:uuid"`
	Value      string `json:"value" gorm:"column:value"`

	// Relaciones
	Question Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

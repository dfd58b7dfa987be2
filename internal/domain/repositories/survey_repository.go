package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
)

// SurveyRepository implementa el acceso a datos de encuestas
type SurveyRepository struct {
	db *gorm.DB
}

// NewSurveyRepository crea una nueva instancia de SurveyRepository
func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{
		db: db,
	}
}

// FindSurvey trae una encuesta con sus preguntas y configuración de
// alertas/recompensas
func (r *SurveyRepository) FindSurvey(id string) (*entities.Survey, error) {
	var survey entities.Survey
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Where("id = ?", id).
		First(&survey).Error
	if err != nil {
		return nil, fmt.Errorf("encuesta no encontrada: %w", err)
	}
	return &survey, nil
}

// GetSurveys lista las encuestas de un negocio con paginación
func (r *SurveyRepository) GetSurveys(tenantID string, page, limit int) ([]entities.Survey, int64, error) {
	var surveys []entities.Survey
	var total int64

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	query := r.db.Model(&entities.Survey{}).Where("tenant_id = ?", tenantID)

	// Contar total antes de paginar
	query.Count(&total)

	offset := (page - 1) * limit
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&surveys).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error al buscar encuestas: %w", err)
	}

	return surveys, total, nil
}

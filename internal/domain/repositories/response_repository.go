package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
)

// ResponseFilter acota la consulta de respuestas: negocios, encuesta
// opcional y rango de fechas opcional
type ResponseFilter struct {
	TenantIDs []string
	SurveyID  string
	StartDate *time.Time
	EndDate   *time.Time
}

// ResponseRepository implementa el acceso a datos de respuestas
type ResponseRepository struct {
	db *gorm.DB
}

// NewResponseRepository crea una nueva instancia de ResponseRepository
func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{
		db: db,
	}
}

// filteredQuery construye la consulta base a partir del filtro
func (r *ResponseRepository) filteredQuery(filter ResponseFilter) *gorm.DB {
	query := r.db.Model(&entities.Response{}).
		Joins("JOIN surveys ON surveys.id = responses.survey_id").
		Where("surveys.tenant_id IN ?", filter.TenantIDs)

	if filter.SurveyID != "" {
		query = query.Where("responses.survey_id = ?", filter.SurveyID)
	}

	if filter.StartDate != nil {
		query = query.Where("responses.created_at >= ?", *filter.StartDate)
	}

	if filter.EndDate != nil {
		query = query.Where("responses.created_at <= ?", *filter.EndDate)
	}

	return query
}

// CountResponses cuenta respuestas con una consulta barata, separada del
// fetch completo: cuando solo se necesita el total no se cargan filas
func (r *ResponseRepository) CountResponses(filter ResponseFilter) (int64, error) {
	var total int64
	if err := r.filteredQuery(filter).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("error al contar respuestas: %w", err)
	}
	return total, nil
}

// FindResponses trae el conjunto filtrado con answers y preguntas anidadas
func (r *ResponseRepository) FindResponses(filter ResponseFilter) ([]entities.Response, error) {
	var responses []entities.Response

	err := r.filteredQuery(filter).
		Preload("Answers").
		Preload("Answers.Question").
		Order("responses.created_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("error al buscar respuestas: %w", err)
	}

	return responses, nil
}

// FindRecentResponses trae las últimas limit respuestas del filtro. El
// ranking mejor/peor muestrea solo esta ventana acotada: respuestas más
// viejas que la ventana no participan (trade-off deliberado de costo).
func (r *ResponseRepository) FindRecentResponses(filter ResponseFilter, limit int) ([]entities.Response, error) {
	var responses []entities.Response

	err := r.filteredQuery(filter).
		Preload("Answers").
		Preload("Answers.Question").
		Order("responses.created_at DESC").
		Limit(limit).
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("error al buscar respuestas recientes: %w", err)
	}

	return responses, nil
}

// FindResponsesByIDs re-trae el detalle completo de respuestas puntuales
// (listas mejor/peor feedback)
func (r *ResponseRepository) FindResponsesByIDs(ids []string) ([]entities.Response, error) {
	if len(ids) == 0 {
		return []entities.Response{}, nil
	}

	var responses []entities.Response
	err := r.db.
		Preload("Answers").
		Preload("Answers.Question").
		Preload("Survey").
		Where("id IN ?", ids).
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("error al buscar respuestas por id: %w", err)
	}

	return responses, nil
}

// CreateResponse persiste la respuesta junto con sus answers. La respuesta
// es append-only: nunca hay updates posteriores.
func (r *ResponseRepository) CreateResponse(response *entities.Response) error {
	if err := r.db.Create(response).Error; err != nil {
		return fmt.Errorf("error al crear respuesta: %w", err)
	}
	return nil
}

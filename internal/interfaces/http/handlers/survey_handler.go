package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sondeo-mx/sondeo-api/internal/domain/repositories"
)

// SurveyHandler atiende las consultas de encuestas
type SurveyHandler struct {
	surveyRepo *repositories.SurveyRepository
}

// NewSurveyHandler crea una nueva instancia de SurveyHandler
func NewSurveyHandler(surveyRepo *repositories.SurveyRepository) *SurveyHandler {
	return &SurveyHandler{
		surveyRepo: surveyRepo,
	}
}

// GetSurvey trae una encuesta con sus preguntas, para que el frontend
// pinte el formulario público
func (h *SurveyHandler) GetSurvey(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El parámetro 'id' es obligatorio",
		})
	}

	survey, err := h.surveyRepo.FindSurvey(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Encuesta no encontrada",
		})
	}

	return c.JSON(survey)
}

// GetSurveys lista las encuestas del negocio con paginación
func (h *SurveyHandler) GetSurveys(c *fiber.Ctx) error {
	tenantID := c.Query("tenant_id", "")
	if tenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El parámetro 'tenant_id' es obligatorio",
		})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	surveys, total, err := h.surveyRepo.GetSurveys(tenantID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"surveys": surveys,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

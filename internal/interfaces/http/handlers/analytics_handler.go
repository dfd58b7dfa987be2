package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sondeo-mx/sondeo-api/internal/application/usecases"
	"github.com/sondeo-mx/sondeo-api/internal/domain/repositories"
)

// AnalyticsHandler atiende las consultas del dashboard agregado
type AnalyticsHandler struct {
	analyticsUseCase *usecases.AnalyticsUseCase
}

// NewAnalyticsHandler crea una nueva instancia de AnalyticsHandler
func NewAnalyticsHandler(analyticsUseCase *usecases.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsUseCase: analyticsUseCase,
	}
}

// GetDashboard regresa el snapshot agregado para los negocios del filtro.
// Los parámetros son: tenant_ids (obligatorio, separado por comas),
// survey_id, from y to.
func (h *AnalyticsHandler) GetDashboard(c *fiber.Ctx) error {
	filter, err := parseResponseFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	snapshot, err := h.analyticsUseCase.GetDashboard(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(snapshot)
}

// InvalidateTenant tira el cache de analytics de un negocio, por ejemplo
// después de una corrección manual de datos
func (h *AnalyticsHandler) InvalidateTenant(c *fiber.Ctx) error {
	tenantID := c.Query("tenant_id", "")
	if tenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El parámetro 'tenant_id' es obligatorio",
		})
	}

	h.analyticsUseCase.InvalidateTenant(tenantID)

	return c.JSON(fiber.Map{
		"invalidated": tenantID,
	})
}

// parseResponseFilter arma el filtro de respuestas desde la query string
func parseResponseFilter(c *fiber.Ctx) (repositories.ResponseFilter, error) {
	var filter repositories.ResponseFilter

	tenantIDs := c.Query("tenant_ids", "")
	if tenantIDs == "" {
		tenantIDs = c.Query("tenant_id", "")
	}
	if tenantIDs == "" {
		return filter, fmt.Errorf("el parámetro 'tenant_ids' es obligatorio")
	}
	for _, tenantID := range strings.Split(tenantIDs, ",") {
		if trimmed := strings.TrimSpace(tenantID); trimmed != "" {
			filter.TenantIDs = append(filter.TenantIDs, trimmed)
		}
	}
	if len(filter.TenantIDs) == 0 {
		return filter, fmt.Errorf("el parámetro 'tenant_ids' es obligatorio")
	}

	filter.SurveyID = c.Query("survey_id", "")

	if from := c.Query("from", ""); from != "" {
		startDate, err := usecases.ParseDateParam(from)
		if err != nil {
			return filter, fmt.Errorf("formato de fecha inválido para 'from': %s", from)
		}
		filter.StartDate = &startDate
	}

	if to := c.Query("to", ""); to != "" {
		endDate, err := usecases.ParseDateParam(to)
		if err != nil {
			return filter, fmt.Errorf("formato de fecha inválido para 'to': %s", to)
		}
		filter.EndDate = &endDate
	}

	return filter, nil
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sondeo-mx/sondeo-api/internal/application/usecases"
)

// FeedbackHandler atiende el envío público de respuestas de encuesta
type FeedbackHandler struct {
	feedbackUseCase *usecases.FeedbackUseCase
}

// NewFeedbackHandler crea una nueva instancia de FeedbackHandler
func NewFeedbackHandler(feedbackUseCase *usecases.FeedbackUseCase) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackUseCase: feedbackUseCase,
	}
}

// SubmitResponse recibe una respuesta nueva, la persiste y dispara el
// pipeline de notificaciones en segundo plano. La respuesta HTTP regresa
// en cuanto la escritura primaria termina.
func (h *FeedbackHandler) SubmitResponse(c *fiber.Ctx) error {
	var input usecases.SubmitResponseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la petición inválido",
		})
	}

	if input.SurveyID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El parámetro 'survey_id' es obligatorio",
		})
	}

	if len(input.Answers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "La respuesta debe traer al menos una answer",
		})
	}

	result, err := h.feedbackUseCase.SubmitResponse(input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

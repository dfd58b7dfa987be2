package insights

import (
	"strconv"
	"strings"

	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
)

// minCommentLength filtra respuestas de texto demasiado cortas para
// considerarse comentario ("ok", "no", etc.)
const minCommentLength = 3

// Signal es la señal normalizada extraída de las respuestas crudas de un
// cliente. Rating es nil cuando ninguna respuesta RATING/EMOJI parsea a
// entero; en ese caso la respuesta no participa en métricas de calificación.
type Signal struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment,omitempty"`
	Context string `json:"context,omitempty"`
}

// HasRating indica si la señal trae calificación utilizable
func (s Signal) HasRating() bool {
	return s.Rating != nil
}

// ExtractSignal deriva la señal de una respuesta a partir de sus answers.
// Es función pura y total: entrada no parseable produce campos vacíos,
// nunca un error.
func ExtractSignal(answers []entities.Answer) Signal {
	var signal Signal
	ratingSeen := false

	for _, answer := range answers {
		switch answer.Question.Type {
		case entities.QuestionRating, entities.QuestionEmoji:
			// La primera pregunta de calificación manda: si no parsea,
			// la respuesta queda sin rating aunque haya otra después.
			if !ratingSeen {
				ratingSeen = true
				if rating, err := strconv.Atoi(strings.TrimSpace(answer.Value)); err == nil {
					signal.Rating = &rating
				}
			}
		case entities.QuestionText:
			if signal.Comment == "" && len(strings.TrimSpace(answer.Value)) > minCommentLength {
				signal.Comment = strings.TrimSpace(answer.Value)
			}
		case entities.QuestionSelect:
			if signal.Context == "" {
				signal.Context = strings.TrimSpace(answer.Value)
			}
		}
	}

	return signal
}

// TextAnswers devuelve los valores de todas las respuestas de texto libre
// de una respuesta, para minería de palabras clave
func TextAnswers(answers []entities.Answer) []string {
	var texts []string
	for _, answer := range answers {
		if answer.Question.Type == entities.QuestionText && strings.TrimSpace(answer.Value) != "" {
			texts = append(texts, answer.Value)
		}
	}
	return texts
}

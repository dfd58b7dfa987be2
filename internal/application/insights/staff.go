package insights

import (
	"sort"
	"strings"

	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
)

// Palabras que delatan una pregunta de "¿quién te atendió?". Se comparan
// contra el texto normalizado de la pregunta.
var staffQuestionHints = []string{"atendio", "mesero", "mesera", "staff", "quien", "waiter", "who"}

// IsStaffQuestion decide heurísticamente si la pregunta pide el nombre de
// quien atendió al cliente
func IsStaffQuestion(questionText string) bool {
	normalized := normalizeText(questionText)
	for _, hint := range staffQuestionHints {
		if strings.Contains(normalized, hint) {
			return true
		}
	}
	return false
}

// Prefijos de respuesta tipo "Sí - Juan" que hay que recortar antes de
// quedarnos con el nombre
var staffNamePrefixes = []string{"sí -", "si -", "sí-", "si-", "yes -", "yes-"}

// NormalizeStaffName limpia un nombre crudo: recorta el prefijo "Sí -" /
// "Yes -" y capitaliza cada palabra
func NormalizeStaffName(raw string) string {
	name := strings.TrimSpace(raw)
	lower := strings.ToLower(name)
	for _, prefix := range staffNamePrefixes {
		if strings.HasPrefix(lower, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// StaffAccumulator acumula calificaciones por miembro del staff. Mantiene
// el orden de inserción para que el ranking sea estable: en empate de
// promedio gana el primero que apareció (el desempate no está definido por
// producto, ver DESIGN.md).
type StaffAccumulator struct {
	order  []string
	sums   map[string]int
	counts map[string]int
}

// NewStaffAccumulator crea un acumulador vacío
func NewStaffAccumulator() *StaffAccumulator {
	return &StaffAccumulator{
		sums:   make(map[string]int),
		counts: make(map[string]int),
	}
}

// Record registra una mención de staff con la calificación de su respuesta.
// Ignora valores demasiado cortos para ser nombre y ratings no positivos.
func (a *StaffAccumulator) Record(rawName string, rating int) {
	if rating <= 0 || len(strings.TrimSpace(rawName)) <= 2 {
		return
	}

	name := NormalizeStaffName(rawName)
	if name == "" {
		return
	}

	if _, seen := a.counts[name]; !seen {
		a.order = append(a.order, name)
	}
	a.sums[name] += rating
	a.counts[name]++
}

// Ranking devuelve los n miembros con mejor promedio, de mayor a menor
func (a *StaffAccumulator) Ranking(n int) []entities.StaffStat {
	stats := make([]entities.StaffStat, 0, len(a.order))
	for _, name := range a.order {
		count := a.counts[name]
		stats = append(stats, entities.StaffStat{
			Name:    name,
			Count:   count,
			Average: float64(a.sums[name]) / float64(count),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Average > stats[j].Average
	})

	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

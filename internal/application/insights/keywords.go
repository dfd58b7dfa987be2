package insights

import (
	"sort"
	"strings"

	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
)

// IssueTerm es un término del vocabulario de problemas. Variants son las
// formas que se buscan dentro del comentario ya normalizado (minúsculas,
// sin acentos).
type IssueTerm struct {
	Term     string
	Variants []string
}

// Vocabulario fijo de problemas del dominio restaurantero. El orden define
// el desempate cuando dos términos tienen el mismo conteo.
var issueVocabulary = []IssueTerm{
	{Term: "tarda", Variants: []string{"tarda", "tardo", "lento", "demora", "espera", "esperamos"}},
	{Term: "atencion", Variants: []string{"grosero", "grosera", "mala atencion", "mal trato", "indiferente", "despota"}},
	{Term: "comida", Variants: []string{"frio", "fria", "crudo", "cruda", "sin sabor", "quemado", "mala calidad"}},
	{Term: "limpieza", Variants: []string{"sucio", "sucia", "mugre", "cochino", "limpieza"}},
	{Term: "ruido", Variants: []string{"ruido", "ruidoso", "escandalo", "musica muy alta"}},
	{Term: "precio", Variants: []string{"caro", "carisimo", "costoso", "precio"}},
	{Term: "porciones", Variants: []string{"poquito", "muy poco", "porcion chica", "porciones chicas"}},
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
)

// normalizeText baja a minúsculas y quita acentos para que "tardó" y
// "tardo" cuenten igual
func normalizeText(text string) string {
	return accentReplacer.Replace(strings.ToLower(text))
}

// AccumulateKeywords suma al mapa los términos del vocabulario presentes en
// el texto. Cada término cuenta una sola vez por respuesta aunque aparezca
// varias veces dentro de ella.
func AccumulateKeywords(counts map[string]int, text string) {
	normalized := normalizeText(text)
	for _, issue := range issueVocabulary {
		for _, variant := range issue.Variants {
			if strings.Contains(normalized, variant) {
				counts[issue.Term]++
				break
			}
		}
	}
}

// MineKeywords escanea un conjunto de textos libres y devuelve el conteo
// por término del vocabulario
func MineKeywords(texts []string) map[string]int {
	counts := make(map[string]int)
	for _, text := range texts {
		AccumulateKeywords(counts, text)
	}
	return counts
}

// TopIssues ordena los conteos de mayor a menor y corta a los n más
// frecuentes. Empates se resuelven por el orden del vocabulario.
func TopIssues(counts map[string]int, n int) []entities.IssueCount {
	ranking := make([]entities.IssueCount, 0, len(counts))
	for _, issue := range issueVocabulary {
		if count, ok := counts[issue.Term]; ok && count > 0 {
			ranking = append(ranking, entities.IssueCount{Term: issue.Term, Count: count})
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})

	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

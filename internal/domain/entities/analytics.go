package entities

import "time"

// MetricKPI representa un valor numérico con comparación al período anterior
type MetricKPI struct {
	Current      float64 `json:"current"`
	Previous     float64 `json:"previous"`
	Percentage   float64 `json:"percentage"`
	IsIncreasing bool    `json:"is_increasing"`
}

// SentimentSplit es el conteo de respuestas por sentimiento:
// positivo (rating >= 4), neutral (== 3), negativo (<= 2)
type SentimentSplit struct {
	Positive int64 `json:"positive"`
	Neutral  int64 `json:"neutral"`
	Negative int64 `json:"negative"`
}

// TrendPoint es un punto de la tendencia diaria (últimos 30 días)
type TrendPoint struct {
	Date         string  `json:"date"`
	Responses    int64   `json:"responses"`
	Satisfaction float64 `json:"satisfaction"`
}

// IssueCount es la frecuencia de un problema detectado en comentarios
type IssueCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// StaffStat es el desempeño acumulado de un miembro del staff
type StaffStat struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// SourceCount es la distribución de respuestas por origen del cliente
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// SurveyAverage es el promedio de calificación por encuesta
type SurveyAverage struct {
	SurveyID string  `json:"survey_id"`
	Title    string  `json:"title"`
	Count    int64   `json:"count"`
	Average  float64 `json:"average"`
}

// AnalyticsSnapshot es el resultado agregado del dashboard. Nunca se
// persiste: es función pura del conjunto de respuestas al momento del
// cálculo y se recalcula en cada miss del cache.
type AnalyticsSnapshot struct {
	TotalResponses int64   `json:"total_responses"`
	RatedResponses int64   `json:"rated_responses"`
	AverageRating  float64 `json:"average_rating"`
	NPS            int     `json:"nps"`

	Sentiment SentimentSplit `json:"sentiment"`
	Trend     []TrendPoint   `json:"trend"`

	TopIssues     []IssueCount    `json:"top_issues"`
	StaffRanking  []StaffStat     `json:"staff_ranking"`
	Sources       []SourceCount   `json:"sources"`
	SurveyRatings []SurveyAverage `json:"survey_ratings"`

	// KPIs comparados contra la ventana de 30 días anterior
	AverageDelta MetricKPI `json:"average_delta"`
	NPSDelta     MetricKPI `json:"nps_delta"`

	BestFeedback   []Response `json:"best_feedback"`
	WorstFeedback  []Response `json:"worst_feedback"`
	RecentFeedback []Response `json:"recent_feedback"`

	GeneratedAt time.Time `json:"generated_at"`
}

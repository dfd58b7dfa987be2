package usecases

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sondeo-mx/sondeo-api/internal/application/insights"
	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
	"github.com/sondeo-mx/sondeo-api/internal/domain/repositories"
	"github.com/sondeo-mx/sondeo-api/internal/infrastructure/cache"
	"github.com/sondeo-mx/sondeo-api/internal/infrastructure/metrics"
	"github.com/sondeo-mx/sondeo-api/internal/utils"
)

const (
	// Ventana de tendencia diaria y de comparación de KPIs
	trendDays = 30

	// Cortes de los rankings del snapshot
	topIssuesLimit  = 5
	topStaffLimit   = 5
	topSourcesLimit = 6

	// El ranking mejor/peor feedback muestrea solo las últimas
	// feedbackSampleSize respuestas del filtro
	feedbackSampleSize = 200
	feedbackListSize   = 3
	recentFeedbackSize = 5

	// Etiqueta de origen cuando el cliente no indicó por dónde llegó
	unspecifiedSource = "sin especificar"
)

// IResponseRepository es la interfaz de acceso a respuestas que necesita
// el agregador
type IResponseRepository interface {
	CountResponses(filter repositories.ResponseFilter) (int64, error)
	FindResponses(filter repositories.ResponseFilter) ([]entities.Response, error)
	FindRecentResponses(filter repositories.ResponseFilter, limit int) ([]entities.Response, error)
	FindResponsesByIDs(ids []string) ([]entities.Response, error)
}

// AnalyticsUseCase calcula el snapshot agregado del dashboard detrás del
// cache con TTL, etiquetas y single-flight
type AnalyticsUseCase struct {
	responseRepo IResponseRepository
	cache        *cache.Cache
	log          *logrus.Logger
}

// NewAnalyticsUseCase crea una nueva instancia de AnalyticsUseCase
func NewAnalyticsUseCase(responseRepo IResponseRepository, c *cache.Cache, log *logrus.Logger) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		responseRepo: responseRepo,
		cache:        c,
		log:          log,
	}
}

// GetDashboard devuelve el snapshot para el filtro, cacheado 60s. Filtros
// distintos nunca comparten llave; lecturas concurrentes del mismo filtro
// comparten un solo cálculo.
func (u *AnalyticsUseCase) GetDashboard(filter repositories.ResponseFilter) (*entities.AnalyticsSnapshot, error) {
	tags := []string{"analytics"}
	for _, tenantID := range filter.TenantIDs {
		tags = append(tags, "tenant:"+tenantID)
	}

	value, err := u.cache.GetOrCompute(dashboardCacheKey(filter), cache.DefaultTTL, tags, func() (interface{}, error) {
		metrics.AggregationsComputed.Inc()
		return u.computeSnapshot(filter)
	})
	if err != nil {
		return nil, err
	}

	return value.(*entities.AnalyticsSnapshot), nil
}

// InvalidateTenant tira todas las entradas cacheadas del negocio, por
// ejemplo después de una corrección manual de datos o de una nueva
// respuesta
func (u *AnalyticsUseCase) InvalidateTenant(tenantID string) {
	u.cache.InvalidateTag("tenant:" + tenantID)
}

func dashboardCacheKey(filter repositories.ResponseFilter) string {
	tenants := make([]string, len(filter.TenantIDs))
	copy(tenants, filter.TenantIDs)
	sort.Strings(tenants)

	key := "dashboard:" + strings.Join(tenants, ",") + "|survey:" + filter.SurveyID
	if filter.StartDate != nil {
		key += "|from:" + filter.StartDate.Format(time.RFC3339)
	}
	if filter.EndDate != nil {
		key += "|to:" + filter.EndDate.Format(time.RFC3339)
	}
	return key
}

// trendBucket acumula un día de la tendencia
type trendBucket struct {
	responses  int64
	ratingSum  int64
	ratedCount int64
}

// computeSnapshot ejecuta la agregación completa. Las cuatro consultas de
// fondo corren en paralelo; la acumulación es puramente en memoria sobre
// datos inmutables.
func (u *AnalyticsUseCase) computeSnapshot(filter repositories.ResponseFilter) (*entities.AnalyticsSnapshot, error) {
	startTime := time.Now()
	location := utils.GetMexicoLocation()
	now := time.Now().In(location)

	// Ventana fija de comparación: los 30 días anteriores a los últimos 30
	previousFilter := filter
	previousStart := now.AddDate(0, 0, -2*trendDays)
	previousEnd := now.AddDate(0, 0, -trendDays)
	previousFilter.StartDate = &previousStart
	previousFilter.EndDate = &previousEnd

	var (
		total             int64
		current           []entities.Response
		previous          []entities.Response
		recentSample      []entities.Response
		wg                sync.WaitGroup
		errorMutex        sync.Mutex
		aggregationErrors []error
	)

	collectError := func(err error) {
		errorMutex.Lock()
		aggregationErrors = append(aggregationErrors, err)
		errorMutex.Unlock()
	}

	// 1. Conteo total barato, separado del fetch completo
	wg.Add(1)
	go func() {
		defer wg.Done()
		count, err := u.responseRepo.CountResponses(filter)
		if err != nil {
			collectError(fmt.Errorf("error al contar respuestas: %w", err))
			return
		}
		total = count
	}()

	// 2. Conjunto completo del período actual
	wg.Add(1)
	go func() {
		defer wg.Done()
		responses, err := u.responseRepo.FindResponses(filter)
		if err != nil {
			collectError(fmt.Errorf("error al traer respuestas del período: %w", err))
			return
		}
		current = responses
	}()

	// 3. Período comparable anterior para los deltas de KPI
	wg.Add(1)
	go func() {
		defer wg.Done()
		responses, err := u.responseRepo.FindResponses(previousFilter)
		if err != nil {
			collectError(fmt.Errorf("error al traer período anterior: %w", err))
			return
		}
		previous = responses
	}()

	// 4. Muestra reciente acotada para mejor/peor/reciente feedback
	wg.Add(1)
	go func() {
		defer wg.Done()
		responses, err := u.responseRepo.FindRecentResponses(filter, feedbackSampleSize)
		if err != nil {
			collectError(fmt.Errorf("error al traer muestra reciente: %w", err))
			return
		}
		recentSample = responses
	}()

	wg.Wait()

	if len(aggregationErrors) > 0 {
		// El cache no se puebla con cálculos fallidos
		return nil, aggregationErrors[0]
	}

	snapshot := &entities.AnalyticsSnapshot{
		TotalResponses: total,
		GeneratedAt:    now,
	}

	// Buckets de tendencia: últimos 30 días calendario, inicializados en
	// cero para que el frontend no tenga huecos
	trendKeys := make([]string, 0, trendDays)
	buckets := make(map[string]*trendBucket, trendDays)
	for day := trendDays - 1; day >= 0; day-- {
		key := now.AddDate(0, 0, -day).Format("2006-01-02")
		trendKeys = append(trendKeys, key)
		buckets[key] = &trendBucket{}
	}

	var (
		ratingSum  int64
		ratedCount int64
		promoters  int64
		detractors int64
	)

	staff := insights.NewStaffAccumulator()
	keywordCounts := make(map[string]int)
	sourceCounts := make(map[string]int64)
	sourceOrder := []string{}

	type surveyAccum struct {
		title string
		sum   int64
		count int64
	}
	surveyTotals := make(map[string]*surveyAccum)
	surveyOrder := []string{}

	for _, response := range current {
		signal := insights.ExtractSignal(response.Answers)

		// Toda respuesta cuenta para el bucket diario aunque no traiga
		// calificación parseable
		dateKey := response.CreatedAt.In(location).Format("2006-01-02")
		bucket, inWindow := buckets[dateKey]
		if inWindow {
			bucket.responses++
		}

		source := response.CustomerSource
		if source == "" {
			source = unspecifiedSource
		}
		if _, seen := sourceCounts[source]; !seen {
			sourceOrder = append(sourceOrder, source)
		}
		sourceCounts[source]++

		if !signal.HasRating() {
			// Sin rating: fuera de toda métrica basada en calificación
			continue
		}
		rating := *signal.Rating

		ratedCount++
		ratingSum += int64(rating)

		if rating == 5 {
			promoters++
		}
		if rating <= 3 {
			detractors++
		}

		switch {
		case rating >= 4:
			snapshot.Sentiment.Positive++
		case rating == 3:
			snapshot.Sentiment.Neutral++
		default:
			snapshot.Sentiment.Negative++
		}

		if inWindow {
			bucket.ratingSum += int64(rating)
			bucket.ratedCount++
		}

		if _, seen := surveyTotals[response.SurveyID]; !seen {
			surveyOrder = append(surveyOrder, response.SurveyID)
			surveyTotals[response.SurveyID] = &surveyAccum{title: response.Survey.Title}
		}
		surveyTotals[response.SurveyID].sum += int64(rating)
		surveyTotals[response.SurveyID].count++

		for _, answer := range response.Answers {
			if insights.IsStaffQuestion(answer.Question.Text) {
				staff.Record(answer.Value, rating)
			}
		}

		if rating <= 3 {
			for _, text := range insights.TextAnswers(response.Answers) {
				insights.AccumulateKeywords(keywordCounts, text)
			}
		}
	}

	snapshot.RatedResponses = ratedCount
	if ratedCount > 0 {
		snapshot.AverageRating = round2(float64(ratingSum) / float64(ratedCount))
	}
	snapshot.NPS = computeNPS(promoters, detractors, ratedCount)

	snapshot.Trend = make([]entities.TrendPoint, 0, trendDays)
	for _, key := range trendKeys {
		bucket := buckets[key]
		point := entities.TrendPoint{Date: key, Responses: bucket.responses}
		if bucket.ratedCount > 0 {
			point.Satisfaction = round2(float64(bucket.ratingSum) / float64(bucket.ratedCount))
		}
		snapshot.Trend = append(snapshot.Trend, point)
	}

	snapshot.TopIssues = insights.TopIssues(keywordCounts, topIssuesLimit)
	snapshot.StaffRanking = staff.Ranking(topStaffLimit)
	snapshot.Sources = rankSources(sourceCounts, sourceOrder, topSourcesLimit)

	snapshot.SurveyRatings = make([]entities.SurveyAverage, 0, len(surveyOrder))
	for _, surveyID := range surveyOrder {
		accum := surveyTotals[surveyID]
		snapshot.SurveyRatings = append(snapshot.SurveyRatings, entities.SurveyAverage{
			SurveyID: surveyID,
			Title:    accum.title,
			Count:    accum.count,
			Average:  round2(float64(accum.sum) / float64(accum.count)),
		})
	}

	// KPIs contra la ventana anterior
	previousAverage, previousNPS := ratingStats(previous)
	snapshot.AverageDelta = calculateKPI(snapshot.AverageRating, previousAverage)
	snapshot.NPSDelta = calculateKPI(float64(snapshot.NPS), previousNPS)

	// Listas mejor/peor/reciente desde la muestra acotada
	if err := u.attachFeedbackLists(snapshot, recentSample); err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"total":     total,
		"rated":     ratedCount,
		"nps":       snapshot.NPS,
		"duracion":  time.Since(startTime).String(),
		"tenants":   filter.TenantIDs,
		"survey_id": filter.SurveyID,
	}).Debug("snapshot de analytics calculado")

	return snapshot, nil
}

// scoredResponse asocia una respuesta de la muestra con su rating extraído
type scoredResponse struct {
	id        string
	rating    int
	createdAt time.Time
}

// attachFeedbackLists arma las listas mejor/peor/reciente a partir de la
// muestra reciente y re-trae el detalle completo solo de los ids elegidos
func (u *AnalyticsUseCase) attachFeedbackLists(snapshot *entities.AnalyticsSnapshot, sample []entities.Response) error {
	var rated []scoredResponse
	for _, response := range sample {
		signal := insights.ExtractSignal(response.Answers)
		if signal.HasRating() {
			rated = append(rated, scoredResponse{
				id:        response.ID,
				rating:    *signal.Rating,
				createdAt: response.CreatedAt,
			})
		}
	}

	var worst, best []scoredResponse
	for _, item := range rated {
		if item.rating <= 3 {
			worst = append(worst, item)
		}
		if item.rating >= 4 {
			best = append(best, item)
		}
	}

	// Peor: rating ascendente, empate por más reciente primero
	sort.SliceStable(worst, func(i, j int) bool {
		if worst[i].rating != worst[j].rating {
			return worst[i].rating < worst[j].rating
		}
		return worst[i].createdAt.After(worst[j].createdAt)
	})

	// Mejor: rating descendente, empate por más reciente primero
	sort.SliceStable(best, func(i, j int) bool {
		if best[i].rating != best[j].rating {
			return best[i].rating > best[j].rating
		}
		return best[i].createdAt.After(best[j].createdAt)
	})

	worstDetail, err := u.fetchInOrder(takeIDs(worst, feedbackListSize))
	if err != nil {
		return err
	}
	bestDetail, err := u.fetchInOrder(takeIDs(best, feedbackListSize))
	if err != nil {
		return err
	}

	snapshot.WorstFeedback = worstDetail
	snapshot.BestFeedback = bestDetail

	// La muestra ya viene ordenada de más reciente a más vieja
	recentLimit := recentFeedbackSize
	if len(sample) < recentLimit {
		recentLimit = len(sample)
	}
	snapshot.RecentFeedback = append([]entities.Response{}, sample[:recentLimit]...)

	return nil
}

// fetchInOrder re-trae detalle por ids y restaura el orden del ranking
func (u *AnalyticsUseCase) fetchInOrder(ids []string) ([]entities.Response, error) {
	if len(ids) == 0 {
		return []entities.Response{}, nil
	}

	detail, err := u.responseRepo.FindResponsesByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("error al traer detalle de feedback: %w", err)
	}

	byID := make(map[string]entities.Response, len(detail))
	for _, response := range detail {
		byID[response.ID] = response
	}

	ordered := make([]entities.Response, 0, len(ids))
	for _, id := range ids {
		if response, ok := byID[id]; ok {
			ordered = append(ordered, response)
		}
	}
	return ordered, nil
}

func takeIDs(items []scoredResponse, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.id)
	}
	return ids
}

// ratingStats calcula promedio y NPS de un conjunto de respuestas (período
// anterior)
func ratingStats(responses []entities.Response) (average float64, nps float64) {
	var sum, rated, promoters, detractors int64
	for _, response := range responses {
		signal := insights.ExtractSignal(response.Answers)
		if !signal.HasRating() {
			continue
		}
		rating := *signal.Rating
		rated++
		sum += int64(rating)
		if rating == 5 {
			promoters++
		}
		if rating <= 3 {
			detractors++
		}
	}

	if rated == 0 {
		return 0, 0
	}
	return round2(float64(sum) / float64(rated)), float64(computeNPS(promoters, detractors, rated))
}

// computeNPS calcula el Net Promoter Score: promotores son rating 5,
// detractores rating <= 3. Cero cuando no hay respuestas calificadas.
func computeNPS(promoters, detractors, rated int64) int {
	if rated == 0 {
		return 0
	}
	return int(math.Round(float64(promoters-detractors) / float64(rated) * 100))
}

// calculateKPI calcula la métrica con comparación porcentual contra el
// período anterior. Si el anterior era cero y el actual positivo, el
// cambio se reporta como 100%.
func calculateKPI(current, previous float64) entities.MetricKPI {
	var percentage float64
	isIncreasing := current > previous

	if previous != 0 {
		percentage = math.Round((current - previous) / previous * 100)
	} else if current > 0 {
		percentage = 100
	}

	if percentage < 0 {
		percentage = -percentage
	}

	return entities.MetricKPI{
		Current:      current,
		Previous:     previous,
		Percentage:   percentage,
		IsIncreasing: isIncreasing,
	}
}

// rankSources ordena la distribución de orígenes de mayor a menor y corta
// al top n. Empates conservan el orden de aparición.
func rankSources(counts map[string]int64, order []string, n int) []entities.SourceCount {
	ranking := make([]entities.SourceCount, 0, len(order))
	for _, source := range order {
		ranking = append(ranking, entities.SourceCount{Source: source, Count: counts[source]})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})

	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// ParseDateParam convierte una cadena de fecha a time.Time. Acepta
// ISO8601 con timezone, fecha simple y fecha-hora sin timezone.
func ParseDateParam(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, nil
	}

	// Intentar formato ISO8601 con timezone
	t, err := time.Parse(time.RFC3339, dateStr)
	if err == nil {
		return t, nil
	}

	// Intentar formato de fecha simple
	t, err = time.Parse("2006-01-02", dateStr)
	if err == nil {
		// Fijar la hora al inicio del día
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, utils.GetMexicoLocation()), nil
	}

	// Intentar fecha y hora sin timezone
	t, err = time.Parse("2006-01-02T15:04:05", dateStr)
	if err == nil {
		return t, nil
	}

	return time.Time{}, err
}

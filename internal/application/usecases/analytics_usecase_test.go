package usecases

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
	"github.com/sondeo-mx/sondeo-api/internal/domain/repositories"
	"github.com/sondeo-mx/sondeo-api/internal/infrastructure/cache"
)

// fakeResponseRepo sirve respuestas en memoria. Las consultas con rango de
// fechas se tratan como la ventana del período anterior.
type fakeResponseRepo struct {
	current  []entities.Response
	previous []entities.Response
	findErr  error

	findCalls int32
}

func (f *fakeResponseRepo) CountResponses(_ repositories.ResponseFilter) (int64, error) {
	if f.findErr != nil {
		return 0, f.findErr
	}
	return int64(len(f.current)), nil
}

func (f *fakeResponseRepo) FindResponses(filter repositories.ResponseFilter) ([]entities.Response, error) {
	atomic.AddInt32(&f.findCalls, 1)
	if f.findErr != nil {
		return nil, f.findErr
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		return f.previous, nil
	}
	return f.current, nil
}

func (f *fakeResponseRepo) FindRecentResponses(_ repositories.ResponseFilter, limit int) ([]entities.Response, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if len(f.current) > limit {
		return f.current[:limit], nil
	}
	return f.current, nil
}

func (f *fakeResponseRepo) FindResponsesByIDs(ids []string) ([]entities.Response, error) {
	var result []entities.Response
	for _, response := range f.current {
		for _, id := range ids {
			if response.ID == id {
				result = append(result, response)
			}
		}
	}
	return result, nil
}

func newAnalytics(repo *fakeResponseRepo) *AnalyticsUseCase {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewAnalyticsUseCase(repo, cache.New(), log)
}

func ratedResponse(id, rating string, createdAt time.Time, texts ...string) entities.Response {
	response := entities.Response{
		ID:        id,
		SurveyID:  "survey-1",
		CreatedAt: createdAt,
	}
	if rating != "" {
		response.Answers = append(response.Answers, entities.Answer{
			Value:    rating,
			Question: entities.Question{Type: entities.QuestionRating, Text: "Califica tu visita"},
		})
	}
	for _, text := range texts {
		response.Answers = append(response.Answers, entities.Answer{
			Value:    text,
			Question: entities.Question{Type: entities.QuestionText, Text: "Cuéntanos más"},
		})
	}
	return response
}

func TestComputeSnapshotNPS(t *testing.T) {
	// Caso de referencia: 5 promotores, 4 detractores, 10 calificadas
	ratings := []string{"5", "5", "5", "5", "5", "1", "1", "1", "2", "3"}
	now := time.Now()

	repo := &fakeResponseRepo{}
	for i, rating := range ratings {
		repo.current = append(repo.current, ratedResponse(fmt.Sprintf("r%d", i), rating, now))
	}

	snapshot, err := newAnalytics(repo).computeSnapshot(repositories.ResponseFilter{TenantIDs: []string{"t1"}})
	require.NoError(t, err)

	assert.Equal(t, 10, int(snapshot.RatedResponses))
	assert.Equal(t, 10, snapshot.NPS)
	assert.InDelta(t, 3.3, snapshot.AverageRating, 0.001)
	assert.Equal(t, int64(5), snapshot.Sentiment.Positive)
	assert.Equal(t, int64(1), snapshot.Sentiment.Neutral)
	assert.Equal(t, int64(4), snapshot.Sentiment.Negative)
}

func TestComputeSnapshotEmpty(t *testing.T) {
	snapshot, err := newAnalytics(&fakeResponseRepo{}).computeSnapshot(repositories.ResponseFilter{TenantIDs: []string{"t1"}})
	require.NoError(t, err)

	assert.Zero(t, snapshot.TotalResponses)
	assert.Zero(t, snapshot.RatedResponses)
	assert.Zero(t, snapshot.AverageRating)
	assert.Zero(t, snapshot.NPS)
	assert.Empty(t, snapshot.TopIssues)
	assert.Empty(t, snapshot.StaffRanking)
	assert.Empty(t, snapshot.BestFeedback)
	assert.Empty(t, snapshot.WorstFeedback)
	assert.Len(t, snapshot.Trend, trendDays)
}

func TestComputeSnapshotUnratedResponse(t *testing.T) {
	now := time.Now()
	repo := &fakeResponseRepo{current: []entities.Response{
		ratedResponse("r1", "5", now),
		ratedResponse("r2", "", now, "sin calificación pero con comentario largo"),
	}}

	snapshot, err := newAnalytics(repo).computeSnapshot(repositories.ResponseFilter{TenantIDs: []string{"t1"}})
	require.NoError(t, err)

	// Cuenta en el total y en el bucket diario, pero no en métricas de rating
	assert.Equal(t, int64(2), snapshot.TotalResponses)
	assert.Equal(t, int64(1), snapshot.RatedResponses)
	assert.InDelta(t, 5.0, snapshot.AverageRating, 0.001)

	today := snapshot.Trend[len(snapshot.Trend)-1]
	assert.Equal(t, int64(2), today.Responses)
	assert.InDelta(t, 5.0, today.Satisfaction, 0.001)
}

func TestComputeSnapshotKeywordsOnlyForLowRatings(t *testing.T) {
	now := time.Now()
	repo := &fakeResponseRepo{current: []entities.Response{
		ratedResponse("r1", "5", now, "tardó mucho pero todo rico"),
		ratedResponse("r2", "2", now, "tardó mucho la comida"),
	}}

	snapshot, err := newAnalytics(repo).computeSnapshot(repositories.ResponseFilter{TenantIDs: []string{"t1"}})
	require.NoError(t, err)

	require.Len(t, snapshot.TopIssues, 1)
	assert.Equal(t, entities.IssueCount{Term: "tarda", Count: 1}, snapshot.TopIssues[0])
}

func TestComputeSnapshotStaffRanking(t *testing.T) {
	now := time.Now()
	staffAnswer := func(id, rating, name string) entities.Response {
		response := ratedResponse(id, rating, now)
		response.Answers = append(response.Answers, entities.Answer{
			Value:    name,
			Question: entities.Question{Type: entities.QuestionText, Text: "¿Quién te atendió?"},
		})
		return response
	}

	repo := &fakeResponseRepo{current: []entities.Response{
		staffAnswer("r1", "5", "Sí - juan"),
		staffAnswer("r2", "3", "juan"),
		staffAnswer("r3", "5", "maria"),
	}}

	snapshot, err := newAnalytics(repo).computeSnapshot(repositories.ResponseFilter{TenantIDs: []string{"t1"}})
	require.NoError(t, err)

	require.Len(t, snapshot.StaffRanking, 2)
	assert.Equal(t, "Maria", snapshot.StaffRanking[0].Name)
	assert.Equal(t, "Juan", snapshot.StaffRanking[1].Name)
	assert.InDelta(t, 4.0, snapshot.StaffRanking[1].Average, 0.001)
}

func TestComputeSnapshotFeedbackLists(t *testing.T) {
	base := time.Now()
	repo := &fakeResponseRepo{current: []entities.Response{
		// Ordenadas de más reciente a más vieja, como las regresa el repo
		ratedResponse("r1", "1", base),
		ratedResponse("r2", "5", base.Add(-1*time.Hour)),
		ratedResponse("r3", "1", base.Add(-2*time.Hour)),
		ratedResponse("r4", "2", base.Add(-3*time.Hour)),
		ratedResponse("r5", "4", base.Add(-4*time.Hour)),
		ratedResponse("r6", "3", base.Add(-5*time.Hour)),
	}}

	snapshot, err := newAnalytics(repo).computeSnapshot(repositories.ResponseFilter{TenantIDs: []string{"t1"}})
	require.NoError(t, err)

	// Peor: ascendente por rating, empate por más reciente
	require.Len(t, snapshot.WorstFeedback, 3)
	assert.Equal(t, "r1", snapshot.WorstFeedback[0].ID)
	assert.Equal(t, "r3", snapshot.WorstFeedback[1].ID)
	assert.Equal(t, "r4", snapshot.WorstFeedback[2].ID)

	// Mejor: descendente por rating
	require.Len(t, snapshot.BestFeedback, 2)
	assert.Equal(t, "r2", snapshot.BestFeedback[0].ID)
	assert.Equal(t, "r5", snapshot.BestFeedback[1].ID)

	require.Len(t, snapshot.RecentFeedback, 5)
	assert.Equal(t, "r1", snapshot.RecentFeedback[0].ID)
}

func TestComputeSnapshotSources(t *testing.T) {
	now := time.Now()
	withSource := func(id, rating, source string) entities.Response {
		response := ratedResponse(id, rating, now)
		response.CustomerSource = source
		return response
	}

	repo := &fakeResponseRepo{current: []entities.Response{
		withSource("r1", "5", "instagram"),
		withSource("r2", "4", "instagram"),
		withSource("r3", "3", ""),
	}}

	snapshot, err := newAnalytics(repo).computeSnapshot(repositories.ResponseFilter{TenantIDs: []string{"t1"}})
	require.NoError(t, err)

	require.Len(t, snapshot.Sources, 2)
	assert.Equal(t, entities.SourceCount{Source: "instagram", Count: 2}, snapshot.Sources[0])
	assert.Equal(t, entities.SourceCount{Source: unspecifiedSource, Count: 1}, snapshot.Sources[1])
}

func TestComputeSnapshotPropagatesFetchError(t *testing.T) {
	repo := &fakeResponseRepo{findErr: errors.New("db caída")}

	_, err := newAnalytics(repo).computeSnapshot(repositories.ResponseFilter{TenantIDs: []string{"t1"}})
	assert.Error(t, err)
}

func TestGetDashboardUsesCacheAndInvalidation(t *testing.T) {
	now := time.Now()
	repo := &fakeResponseRepo{current: []entities.Response{ratedResponse("r1", "5", now)}}
	analytics := newAnalytics(repo)
	filter := repositories.ResponseFilter{TenantIDs: []string{"t1"}}

	_, err := analytics.GetDashboard(filter)
	require.NoError(t, err)
	callsAfterFirst := atomic.LoadInt32(&repo.findCalls)

	// Segundo hit dentro del TTL: sin consultas nuevas
	_, err = analytics.GetDashboard(filter)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, atomic.LoadInt32(&repo.findCalls))

	// La invalidación por etiqueta fuerza el recálculo aun dentro del TTL
	analytics.InvalidateTenant("t1")
	_, err = analytics.GetDashboard(filter)
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&repo.findCalls), callsAfterFirst)
}

func TestCalculateKPI(t *testing.T) {
	tests := []struct {
		name           string
		current        float64
		previous       float64
		wantPercentage float64
		wantIncreasing bool
	}{
		{"ambos cero", 0, 0, 0, false},
		{"anterior cero y actual positivo", 4.5, 0, 100, true},
		{"subida", 5, 4, 25, true},
		{"bajada se reporta en absoluto", 4, 5, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kpi := calculateKPI(tt.current, tt.previous)
			assert.InDelta(t, tt.wantPercentage, kpi.Percentage, 0.001)
			assert.Equal(t, tt.wantIncreasing, kpi.IsIncreasing)
		})
	}
}

func TestComputeNPS(t *testing.T) {
	assert.Equal(t, 0, computeNPS(0, 0, 0))
	assert.Equal(t, 100, computeNPS(10, 0, 10))
	assert.Equal(t, -100, computeNPS(0, 10, 10))
	assert.Equal(t, 10, computeNPS(5, 4, 10))
}

func TestParseDateParam(t *testing.T) {
	t.Run("RFC3339", func(t *testing.T) {
		parsed, err := ParseDateParam("2026-08-01T10:30:00-06:00")
		require.NoError(t, err)
		assert.Equal(t, 10, parsed.Hour())
	})

	t.Run("fecha simple arranca el día", func(t *testing.T) {
		parsed, err := ParseDateParam("2026-08-01")
		require.NoError(t, err)
		assert.Equal(t, 0, parsed.Hour())
	})

	t.Run("vacío regresa cero sin error", func(t *testing.T) {
		parsed, err := ParseDateParam("")
		require.NoError(t, err)
		assert.True(t, parsed.IsZero())
	})

	t.Run("basura regresa error", func(t *testing.T) {
		_, err := ParseDateParam("ayer")
		assert.Error(t, err)
	})
}

func TestDashboardCacheKeyDistinguishesFilters(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	keyA := dashboardCacheKey(repositories.ResponseFilter{TenantIDs: []string{"t1"}})
	keyB := dashboardCacheKey(repositories.ResponseFilter{TenantIDs: []string{"t1"}, SurveyID: "s1"})
	keyC := dashboardCacheKey(repositories.ResponseFilter{TenantIDs: []string{"t1"}, StartDate: &from})
	keyD := dashboardCacheKey(repositories.ResponseFilter{TenantIDs: []string{"t2", "t1"}})
	keyE := dashboardCacheKey(repositories.ResponseFilter{TenantIDs: []string{"t1", "t2"}})

	assert.NotEqual(t, keyA, keyB)
	assert.NotEqual(t, keyA, keyC)
	// El orden de tenants no genera llaves distintas
	assert.Equal(t, keyD, keyE)
}

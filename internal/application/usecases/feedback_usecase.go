package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sondeo-mx/sondeo-api/internal/application/insights"
	"github.com/sondeo-mx/sondeo-api/internal/application/notifier"
	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
)

// ISurveyRepository es el acceso a encuestas que necesita el pipeline
type ISurveyRepository interface {
	FindSurvey(id string) (*entities.Survey, error)
}

// ITenantRepository es el acceso a configuración de negocios
type ITenantRepository interface {
	FindTenantSettings(tenantID string) (*entities.TenantSettings, error)
}

// IResponseWriter persiste respuestas nuevas
type IResponseWriter interface {
	CreateResponse(response *entities.Response) error
}

// IAlertDispatcher despacha alertas y envíos de plantilla
type IAlertDispatcher interface {
	Dispatch(ctx context.Context, alert notifier.Alert)
	SendTemplates(ctx context.Context, phones []string, recipientName, headline, body string)
}

// RewardTier identifica el nivel de recompensa elegido
type RewardTier string

const (
	TierGood    RewardTier = "good"
	TierNeutral RewardTier = "neutral"
	TierBad     RewardTier = "bad"
	// TierLegacy es el formato plano previo a los niveles, usado como
	// fallback cuando el nivel bad está apagado pero la bandera legada
	// sigue activa
	TierLegacy RewardTier = "legacy"
)

// Reward es la recompensa ofrecida al cliente, si aplica
type Reward struct {
	Tier  RewardTier `json:"tier"`
	Offer string     `json:"offer"`
	Code  string     `json:"code"`
}

// EvaluateCrisis decide si la calificación amerita alerta interna de
// crisis. Sin calificación parseable nunca hay crisis.
func EvaluateCrisis(rating *int, threshold int) bool {
	return rating != nil && *rating <= threshold
}

// SelectRecovery elige la recompensa por bucket de calificación. Los
// niveles son mutuamente excluyentes: una calificación cae exactamente en
// uno (o en ninguno si está apagado y no hay fallback legado).
func SelectRecovery(rating *int, cfg entities.RecoveryConfig) *Reward {
	if rating == nil {
		return nil
	}

	switch {
	case *rating >= 4:
		if cfg.Good.Enabled {
			return &Reward{Tier: TierGood, Offer: cfg.Good.Offer, Code: cfg.Good.Code}
		}
	case *rating == 3:
		if cfg.Neutral.Enabled {
			return &Reward{Tier: TierNeutral, Offer: cfg.Neutral.Offer, Code: cfg.Neutral.Code}
		}
	default:
		if cfg.Bad.Enabled {
			return &Reward{Tier: TierBad, Offer: cfg.Bad.Offer, Code: cfg.Bad.Code}
		}
		if cfg.Enabled {
			return &Reward{Tier: TierLegacy, Offer: cfg.Offer, Code: cfg.Code}
		}
	}

	return nil
}

// AnswerInput es una respuesta individual del payload de envío
type AnswerInput struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}

// SubmitResponseInput es el payload completo de una respuesta nueva
type SubmitResponseInput struct {
	SurveyID       string        `json:"survey_id"`
	CustomerName   string        `json:"customer_name"`
	CustomerPhone  string        `json:"customer_phone"`
	CustomerEmail  string        `json:"customer_email"`
	CustomerSource string        `json:"customer_source"`
	Photo          string        `json:"photo"`
	Answers        []AnswerInput `json:"answers"`
}

// SubmitResult es lo que regresa el envío: el id persistido y la
// recompensa elegida (para que el frontend muestre la oferta al cliente)
type SubmitResult struct {
	ResponseID string             `json:"response_id"`
	Rating     *int               `json:"rating"`
	Reward     *Reward            `json:"reward,omitempty"`
	Signal     insights.Signal    `json:"-"`
	Survey     *entities.Survey   `json:"-"`
	Response   *entities.Response `json:"-"`
}

// FeedbackUseCase corre el pipeline de envío de respuestas: persistencia,
// extracción de señal, decisiones de crisis/recompensa y despacho
// fire-and-forget de notificaciones
type FeedbackUseCase struct {
	surveyRepo   ISurveyRepository
	tenantRepo   ITenantRepository
	responseRepo IResponseWriter
	dispatcher   IAlertDispatcher
	analytics    *AnalyticsUseCase
	log          *logrus.Logger

	// asyncDispatch en false corre el despacho en línea (tests)
	asyncDispatch bool
}

// NewFeedbackUseCase crea una nueva instancia de FeedbackUseCase
func NewFeedbackUseCase(
	surveyRepo ISurveyRepository,
	tenantRepo ITenantRepository,
	responseRepo IResponseWriter,
	dispatcher IAlertDispatcher,
	analytics *AnalyticsUseCase,
	log *logrus.Logger,
) *FeedbackUseCase {
	return &FeedbackUseCase{
		surveyRepo:    surveyRepo,
		tenantRepo:    tenantRepo,
		responseRepo:  responseRepo,
		dispatcher:    dispatcher,
		analytics:     analytics,
		log:           log,
		asyncDispatch: true,
	}
}

// SubmitResponse persiste la respuesta y dispara el pipeline de
// notificaciones. El despacho corre en segundo plano: latencia o errores
// del proveedor jamás fallan ni retrasan la escritura primaria.
func (u *FeedbackUseCase) SubmitResponse(input SubmitResponseInput) (*SubmitResult, error) {
	survey, err := u.surveyRepo.FindSurvey(input.SurveyID)
	if err != nil {
		return nil, err
	}

	response := &entities.Response{
		ID:             uuid.NewString(),
		SurveyID:       survey.ID,
		CustomerName:   input.CustomerName,
		CustomerPhone:  input.CustomerPhone,
		CustomerEmail:  input.CustomerEmail,
		CustomerSource: input.CustomerSource,
		Photo:          input.Photo,
		CreatedAt:      time.Now(),
	}
	for _, answer := range input.Answers {
		response.Answers = append(response.Answers, entities.Answer{
			ID:         uuid.NewString(),
			ResponseID: response.ID,
			QuestionID: answer.QuestionID,
			Value:      answer.Value,
		})
	}

	if err := u.responseRepo.CreateResponse(response); err != nil {
		return nil, err
	}

	// La escritura invalida los snapshots cacheados del negocio
	if u.analytics != nil {
		u.analytics.InvalidateTenant(survey.TenantID)
	}

	signal := insights.ExtractSignal(attachQuestions(survey, response.Answers))
	reward := SelectRecovery(signal.Rating, survey.RecoveryConfig)

	result := &SubmitResult{
		ResponseID: response.ID,
		Rating:     signal.Rating,
		Reward:     reward,
		Signal:     signal,
		Survey:     survey,
		Response:   response,
	}

	if u.asyncDispatch {
		go u.dispatchSideEffects(survey, response, signal, reward)
	} else {
		u.dispatchSideEffects(survey, response, signal, reward)
	}

	return result, nil
}

// dispatchSideEffects corre las dos decisiones independientes: alerta de
// crisis al staff y recompensa al cliente. Una respuesta puede disparar
// una, ambas o ninguna.
func (u *FeedbackUseCase) dispatchSideEffects(survey *entities.Survey, response *entities.Response, signal insights.Signal, reward *Reward) {
	ctx := context.Background()

	if survey.AlertConfig.Enabled && EvaluateCrisis(signal.Rating, survey.AlertConfig.EffectiveThreshold()) {
		u.dispatchCrisisAlert(ctx, survey, response, signal)
	}

	if reward != nil && response.CustomerPhone != "" {
		u.dispatchReward(ctx, response, reward)
	}
}

// dispatchCrisisAlert arma y despacha la alerta interna más el envío de
// plantilla a los teléfonos configurados, deduplicados contra el teléfono
// global del negocio
func (u *FeedbackUseCase) dispatchCrisisAlert(ctx context.Context, survey *entities.Survey, response *entities.Response, signal insights.Signal) {
	var tenantPhones []string
	settings, err := u.tenantRepo.FindTenantSettings(survey.TenantID)
	if err != nil {
		// Sin configuración global seguimos con los teléfonos de la encuesta
		u.log.WithError(err).WithField("tenant_id", survey.TenantID).
			Warn("no se pudo leer la configuración del negocio para la alerta")
	} else if settings.NotificationPreferences.WhatsApp && settings.Phone != "" {
		tenantPhones = append(tenantPhones, settings.Phone)
	}

	phones := notifier.DedupePhones(survey.AlertConfig.Phones, tenantPhones)

	customer := response.CustomerName
	if customer == "" {
		customer = "un cliente"
	}

	rating := *signal.Rating
	message := fmt.Sprintf("Calificación %d/5 de %s en %q", rating, customer, survey.Title)
	if signal.Comment != "" {
		message += fmt.Sprintf(": %q", signal.Comment)
	}

	u.dispatcher.Dispatch(ctx, notifier.Alert{
		TenantID:      survey.TenantID,
		Type:          entities.NotificationCrisis,
		Title:         "Cliente insatisfecho",
		Message:       message,
		RecipientName: survey.Title,
		Phones:        phones,
		Meta: entities.JSONMap{
			"response_id": response.ID,
			"survey_id":   survey.ID,
			"rating":      rating,
			"comment":     signal.Comment,
		},
	})
}

// dispatchReward envía la oferta de recuperación al teléfono del cliente
func (u *FeedbackUseCase) dispatchReward(ctx context.Context, response *entities.Response, reward *Reward) {
	phones := notifier.DedupePhones([]string{response.CustomerPhone})
	if len(phones) == 0 {
		return
	}

	customer := response.CustomerName
	if customer == "" {
		customer = "Hola"
	}

	body := reward.Offer
	if reward.Code != "" {
		body = fmt.Sprintf("%s (código %s)", reward.Offer, reward.Code)
	}

	u.dispatcher.SendTemplates(ctx, phones, customer, "Tenemos un regalo para ti", body)
}

// attachQuestions enriquece las answers con la metadata de pregunta de la
// encuesta para poder extraer la señal
func attachQuestions(survey *entities.Survey, answers []entities.Answer) []entities.Answer {
	questions := make(map[string]entities.Question, len(survey.Questions))
	for _, question := range survey.Questions {
		questions[question.ID] = question
	}

	enriched := make([]entities.Answer, len(answers))
	copy(enriched, answers)
	for i := range enriched {
		if question, ok := questions[enriched[i].QuestionID]; ok {
			enriched[i].Question = question
		}
	}
	return enriched
}

package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sondeo-mx/sondeo-api/internal/application/notifier"
	"github.com/sondeo-mx/sondeo-api/internal/application/usecases"
	"github.com/sondeo-mx/sondeo-api/internal/domain/repositories"
	"github.com/sondeo-mx/sondeo-api/internal/infrastructure/cache"
	"github.com/sondeo-mx/sondeo-api/internal/infrastructure/metrics"
	"github.com/sondeo-mx/sondeo-api/internal/infrastructure/whatsapp"
	"github.com/sondeo-mx/sondeo-api/internal/interfaces/http/handlers"
	"github.com/sondeo-mx/sondeo-api/internal/interfaces/http/middleware"
)

func authMiddleware(c *fiber.Ctx) error {
	// TODO: Implementar autenticación del panel
	return c.Next()
}

// SetupRoutes arma el árbol completo de dependencias y registra las rutas
func SetupRoutes(app *fiber.App, db *gorm.DB, log *logrus.Logger) {
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// ETag para que el panel cachee snapshots sin recalcular
	app.Use(etag.New())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Métricas de operación (despachos, agregaciones, notificaciones)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Repositories
	surveyRepo := repositories.NewSurveyRepository(db)
	responseRepo := repositories.NewResponseRepository(db)
	tenantRepo := repositories.NewTenantRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Infraestructura compartida
	snapshotCache := cache.New()
	deliverer := whatsapp.NewClientFromEnv()
	dispatcher := notifier.NewDispatcher(
		deliverer,
		notificationRepo,
		log,
		envOrDefault("WHATSAPP_TEMPLATE_NAME", "alerta_sondeo"),
		envOrDefault("WHATSAPP_TEMPLATE_LANG", "es_MX"),
	)

	// Use Cases
	analyticsUseCase := usecases.NewAnalyticsUseCase(responseRepo, snapshotCache, log)
	feedbackUseCase := usecases.NewFeedbackUseCase(surveyRepo, tenantRepo, responseRepo, dispatcher, analyticsUseCase, log)

	// Handlers
	feedbackHandler := handlers.NewFeedbackHandler(feedbackUseCase)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsUseCase)
	surveyHandler := handlers.NewSurveyHandler(surveyRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)

	groups := middleware.SetupRouteGroups(app, authMiddleware)

	// Formulario público: leer encuesta y enviar respuesta
	groups.Public.Get("/surveys/:id", surveyHandler.GetSurvey)
	groups.Public.Post("/responses", feedbackHandler.SubmitResponse)

	// Panel del negocio
	groups.Panel.Get("/surveys", surveyHandler.GetSurveys)
	groups.Panel.Get("/analytics/dashboard", analyticsHandler.GetDashboard)
	groups.Panel.Post("/analytics/invalidate", analyticsHandler.InvalidateTenant)
	groups.Panel.Get("/notifications", notificationHandler.GetNotifications)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

package main

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sondeo-mx/sondeo-api/internal/infrastructure/database"
	"github.com/sondeo-mx/sondeo-api/internal/interfaces/http/middleware"
	"github.com/sondeo-mx/sondeo-api/internal/interfaces/http/routes"
)

func main() {
	log := setupLogger()

	// Cargar variables de ambiente
	if err := godotenv.Load(); err != nil {
		log.Warn("⚠️ No se encontró archivo .env, usando variables del sistema")
	}

	// Inicializar base de datos
	db, err := database.SetupDatabase()
	if err != nil {
		log.Fatalf("❌ Error configurando la base de datos: %v", err)
	}

	app := fiber.New(fiber.Config{
		Concurrency: 256 * 1024,
		// Prefork deshabilitado: causa inestabilidad en el contenedor
		Prefork:      false,
		BodyLimit:    10 * 1024 * 1024, // 10MB
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	middleware.SetupMiddlewares(app)
	routes.SetupRoutes(app, db, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Infof("🚀 Servidor corriendo en el puerto %s", port)
	log.Fatal(app.Listen(":" + port))
}

// setupLogger configura logrus con formato JSON y nivel desde LOG_LEVEL
func setupLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

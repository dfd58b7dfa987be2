package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// SetupMiddlewares registra los middlewares globales de la aplicación
func SetupMiddlewares(app *fiber.App) {
	// CORS: el formulario público y el panel viven en dominios distintos
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "https://panel.sondeo.mx, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           300, // 5 minutos
	}))
}

// RouteGroups define los grupos de rutas de la API
type RouteGroups struct {
	// Public recibe el tráfico del formulario de encuesta, sin autenticación
	Public fiber.Router
	// Panel agrupa las rutas del tablero del negocio
	Panel fiber.Router
}

// SetupRouteGroups configura los grupos de rutas con sus middlewares
func SetupRouteGroups(app *fiber.App, authMiddleware func(c *fiber.Ctx) error) RouteGroups {
	public := app.Group("/")

	panel := app.Group("/panel")
	panel.Use(authMiddleware)

	return RouteGroups{
		Public: public,
		Panel:  panel,
	}
}

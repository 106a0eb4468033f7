package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"schema-generator/controllers"
	"schema-generator/internal/metrics"
)

// NewServer creates the echo instance with middleware and routes.
// requestsPerSecond limits schema generation per client; 0 disables it.
func NewServer(healthController *controllers.HealthController, schemaController *controllers.SchemaController, requestsPerSecond float64) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metricsMiddleware)

	var generateMiddleware []echo.MiddlewareFunc
	if requestsPerSecond > 0 {
		store := middleware.NewRateLimiterMemoryStore(rate.Limit(requestsPerSecond))
		generateMiddleware = append(generateMiddleware, middleware.RateLimiter(store))
	}

	SetupRoutes(e, healthController, schemaController, generateMiddleware...)
	return e
}

func SetupRoutes(e *echo.Echo, healthController *controllers.HealthController, schemaController *controllers.SchemaController, generateMiddleware ...echo.MiddlewareFunc) {
	// Health check route
	e.GET("/health", healthController.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes
	api := e.Group("/api")

	api.POST("/schema", schemaController.Generate, generateMiddleware...)
	api.POST("/schema/parse", schemaController.Parse)
	api.POST("/schema/validate", schemaController.Validate)
	api.POST("/schema/ddl", schemaController.DDL)
}

// metricsMiddleware counts requests by route pattern and status
func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)

		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}
		metrics.RecordHTTPRequest(c.Request().Method, c.Path(), status)
		return err
	}
}

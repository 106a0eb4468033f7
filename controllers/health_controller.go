package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthController struct {
	llmConfigured bool
}

func NewHealthController(llmConfigured bool) *HealthController {
	return &HealthController{llmConfigured: llmConfigured}
}

func (hc *HealthController) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"message":        "Server is running",
		"service":        "schema-generator",
		"llm_configured": hc.llmConfigured,
	})
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	now func() time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.health)
}

type healthResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (h *HealthHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Message:   "Sales notes API is running",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

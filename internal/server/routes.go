package server

import (
	"salesnotes/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health    *handler.HealthHandler
	Products  *handler.ProductHandler
	Customers *handler.CustomerHandler
	Notes     *handler.SalesNoteHandler
	Dashboard *handler.DashboardHandler
	AuditLogs *handler.AuditLogHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	api := e.Group("/api")

	h.Health.RegisterRoutes(api)
	h.Products.RegisterRoutes(api)
	h.Customers.RegisterRoutes(api)
	h.Notes.RegisterRoutes(api)
	h.Dashboard.RegisterRoutes(api)
	h.AuditLogs.RegisterRoutes(api)
}

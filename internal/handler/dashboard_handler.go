package handler

import (
	"net/http"
	"strconv"

	"salesnotes/internal/usecase"

	"github.com/labstack/echo/v4"
)

type DashboardHandler struct {
	uc *usecase.DashboardUsecase
}

func NewDashboardHandler(uc *usecase.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

func (h *DashboardHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/dashboard/stats", h.stats)
}

func (h *DashboardHandler) stats(c echo.Context) error {
	s, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, s)
}

// 監査ログは参照のみ
type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit-logs", h.list)
}

func (h *AuditLogHandler) list(c echo.Context) error {
	in := usecase.AuditLogListInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
	}

	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		in.ResourceID = &id
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		in.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid offset")
		}
		in.Offset = o
	}

	page, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, page)
}

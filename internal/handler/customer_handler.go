package handler

import (
	"net/http"

	"salesnotes/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CustomerRequest struct {
	Name    string `json:"name"`
	DNI     string `json:"dni"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (r CustomerRequest) input() usecase.CustomerInput {
	return usecase.CustomerInput{
		Name:    r.Name,
		DNI:     r.DNI,
		Address: r.Address,
		Phone:   r.Phone,
	}
}

type CustomerHandler struct {
	uc *usecase.CustomerUsecase
}

func NewCustomerHandler(uc *usecase.CustomerUsecase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

func (h *CustomerHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/customers", h.list)
	g.GET("/customers/:id", h.detail)
	g.POST("/customers", h.create)
	g.PUT("/customers/:id", h.update)
	g.DELETE("/customers/:id", h.delete)
}

// ?q= は名前かdniに一致
func (h *CustomerHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return okList(c, out)
}

func (h *CustomerHandler) detail(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	cust, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, cust)
}

func (h *CustomerHandler) create(c echo.Context) error {
	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	id, err := h.uc.Create(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusCreated, "Customer created", map[string]int64{"id": id})
}

func (h *CustomerHandler) update(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	if err := h.uc.Update(c.Request().Context(), id, req.input()); err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusOK, "Customer updated", nil)
}

func (h *CustomerHandler) delete(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusOK, "Customer deleted", nil)
}

package handler

import (
	"net/http"
	"strconv"

	"salesnotes/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name  string          `json:"name"`
	Stock int64           `json:"stock"`
	Cost  decimal.Decimal `json:"cost"`
	Price decimal.Decimal `json:"price"`
}

// StockUpdateRequestは商品1件の在庫を絶対値で設定する
type StockUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// /api/productsと在庫の手動設定
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DIコンストラクタ
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.GET("/products/low-stock", h.lowStock)
	g.GET("/products/:id", h.detail)
	g.POST("/products", h.create)
	g.PUT("/products/:id", h.update)
	g.PUT("/products/:id/stock", h.updateStock)
	g.DELETE("/products/:id", h.delete)
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return writeError(c, err)
	}
	return okList(c, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, p)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	id, err := h.uc.CreateProduct(c.Request().Context(), usecase.ProductInput{
		Name:  req.Name,
		Stock: req.Stock,
		Cost:  req.Cost,
		Price: req.Price,
	})
	if err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusCreated, "Product created", map[string]int64{"id": id})
}

func (h *ProductHandler) update(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	err := h.uc.UpdateProduct(c.Request().Context(), id, usecase.ProductInput{
		Name:  req.Name,
		Cost:  req.Cost,
		Price: req.Price,
	})
	if err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusOK, "Product updated", nil)
}

func (h *ProductHandler) updateStock(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	var req StockUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	if err := h.uc.AdjustStock(c.Request().Context(), id, req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusOK, "Stock updated", nil)
}

func (h *ProductHandler) lowStock(c echo.Context) error {
	var threshold *int64
	if v := c.QueryParam("threshold"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid threshold")
		}
		threshold = &x
	}

	out, err := h.uc.LowStock(c.Request().Context(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return okList(c, out)
}

// 明細から参照されている商品は 409
func (h *ProductHandler) delete(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteProduct(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusOK, "Product deleted", nil)
}

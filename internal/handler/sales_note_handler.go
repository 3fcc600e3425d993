package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"salesnotes/internal/usecase"

	"github.com/labstack/echo/v4"
)

// CreateNoteRequestの明細は位置で決まるタプル:
// [product_id, quantity, unit_price, size, color]
type CreateNoteRequest struct {
	CustomerID int64             `json:"customer_id"`
	Items      []json.RawMessage `json:"items"`
	Notes      *string           `json:"notes"`
}

type FilterNotesRequest struct {
	NoteID    string `json:"note_id"`
	Customer  string `json:"customer"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type SalesNoteHandler struct {
	uc *usecase.SalesNoteUsecase
}

// DIコンストラクタ
func NewSalesNoteHandler(uc *usecase.SalesNoteUsecase) *SalesNoteHandler {
	return &SalesNoteHandler{uc: uc}
}

func (h *SalesNoteHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/notes", h.create)
	g.GET("/notes", h.list)
	g.POST("/notes/filter", h.filter)
	g.GET("/notes/:id", h.detail)
	g.POST("/notes/:id/confirm", h.confirm)
}

func (h *SalesNoteHandler) create(c echo.Context) error {
	var req CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.CreateNote(c.Request().Context(), usecase.CreateNoteInput{
		CustomerID: req.CustomerID,
		Items:      req.Items,
		Notes:      req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusCreated, "Sales note created", out)
}

func (h *SalesNoteHandler) confirm(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.ConfirmSale(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusOK, "Sale confirmed", out)
}

func (h *SalesNoteHandler) filter(c echo.Context) error {
	var req FilterNotesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.FilterNotes(c.Request().Context(), usecase.FilterNotesInput{
		NoteID:    req.NoteID,
		Customer:  req.Customer,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return okList(c, out)
}

func (h *SalesNoteHandler) detail(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetNote(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *SalesNoteHandler) list(c echo.Context) error {
	// page（省略時1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid page")
		}
		page = p
	}

	// limit（省略時10）
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = l
	}

	out, err := h.uc.ListNotes(c.Request().Context(), usecase.ListNotesInput{
		Page:   page,
		Limit:  limit,
		Search: c.QueryParam("search"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out)
}

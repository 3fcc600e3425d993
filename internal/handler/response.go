package handler

import (
	"errors"
	"net/http"
	"strconv"

	"salesnotes/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ResponseはAPIが返す全ボディの共通の形
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func okMessage(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func okList[T any](c echo.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return c.JSON(http.StatusOK, Response{Success: true, Data: items, Count: &n})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Response{Success: false, Error: message})
}

func statusOf(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindInvalidRequest, usecase.KindInsufficientStock:
		return http.StatusBadRequest
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ue, ok := usecase.AsError(err); ok {
		return c.JSON(statusOf(ue.Kind), Response{Success: false, Error: ue.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
}

// ErrorHandlerはechoのエラー（ルートなし、ボディ過大、panic）も同じ形で返す
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else if ue, ok := usecase.AsError(err); ok {
			status = statusOf(ue.Kind)
			message = ue.Message
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed", zap.Error(err), zap.String("path", c.Request().URL.Path))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, Response{Success: false, Error: message})
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}

func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

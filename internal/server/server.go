package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"salesnotes/internal/config"
	"salesnotes/internal/handler"
	"salesnotes/internal/middleware"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Newはミドルウェアと全ルートを載せたechoを作る
func New(cfg config.Config, log *zap.Logger, h Handlers) *echo.Echo {
	//金額はJSONの数値で返す
	decimal.MarshalJSONWithoutQuotes = true

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.AccessLog(log))
	e.Use(echomw.Recover())
	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{cfg.FEURL},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
		}))
	}
	e.Use(echomw.BodyLimit("1M"))

	RegisterRoutes(e, h)
	return e
}

// Startはctxがキャンセルされるまで動き、処理中のリクエストを待って止まる
func Start(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

package server

import (
	"fmt"
	"time"

	"github.com/aidarkhanov/nanoid"
	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/klytics/sheetlens/internal/metrics"
)

// Context is the echo context handed to every route behind the track middleware.
type Context struct {
	echo.Context
	Log   *zap.SugaredLogger
	Reqid string
}

func NewTrackMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID, _ := nanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 28)
			logger := log.With("request_id", "req_"+reqID)
			c.Response().Header().Set(echo.HeaderXRequestID, "req_"+reqID)

			cc := &Context{Context: c, Log: logger, Reqid: reqID}
			start := time.Now()
			err := next(cc)
			if err != nil {
				// let echo write the response so the logged status is the real one
				cc.Error(err)
			}
			duration := time.Since(start)
			cc.Log.Infow("end_of_request",
				"path", cc.Path(),
				"status_code", fmt.Sprintf("%d", cc.Response().Status),
				"duration", duration.String(),
			)
			metrics.RequestCount.WithLabelValues(cc.Path(), fmt.Sprintf("%d", cc.Response().Status)).Inc()
			return nil
		}
	}
}

func NewRecoverMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return emw.RecoverWithConfig(emw.RecoverConfig{
		StackSize: 1 << 10, // 1 KB
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			defer func() {
				_ = log.Sync()
			}()
			log.Errorw("Api Panic", "error", err.Error(), "stack", string(stack))
			return c.JSON(ErrInternalServerError.StatusCode, errorBody(ErrInternalServerError.Err))
		},
	})
}

func logger(c echo.Context) *zap.SugaredLogger {
	if cc, ok := c.(*Context); ok {
		return cc.Log
	}
	return zap.NewNop().Sugar()
}

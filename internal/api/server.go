package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/polysign/mirsinn/internal/apperr"
	"github.com/polysign/mirsinn/internal/domain"
	"github.com/polysign/mirsinn/internal/usecase"
)

// Server exposes the on-demand job trigger and a health endpoint.
type Server struct {
	echo   *echo.Echo
	job    *usecase.DailyJob
	loc    *time.Location
	logger *slog.Logger
}

// New wires routes and middleware around the daily job.
func New(job *usecase.DailyJob, loc *time.Location, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	s := &Server{echo: e, job: job, loc: loc, logger: logger}

	e.GET("/healthz", s.health)
	e.POST("/api/jobs/daily-question", s.triggerDailyQuestion)

	return s
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// triggerDailyQuestion runs the job on demand. An optional ?date=MM-DD-YYYY
// targets a specific calendar day (backfills); default is today.
func (s *Server) triggerDailyQuestion(c echo.Context) error {
	now := time.Now().In(s.loc)

	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := domain.ParseDateKey(raw, s.loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be MM-DD-YYYY"})
		}
		now = parsed
	}

	result, err := s.job.Run(c.Request().Context(), now)
	if err != nil {
		if errors.Is(err, apperr.ErrNoQuestions) {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	status := http.StatusCreated
	if result.Status == usecase.RunStatusExists {
		status = http.StatusOK
	}
	return c.JSON(status, result)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogLatency: true,
		LogURI:     true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Error("request", "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
				return nil
			}
			logger.Info("request", "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	})
}

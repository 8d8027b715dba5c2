// Package web serves the browser UI for generating copy and managing
// artist personas.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xeitosa/socialai/internal/app"
)

const (
	// maxUpload caps multipart request bodies.
	maxUpload = "200M"

	// generateTimeout bounds a single generation, media polling included.
	generateTimeout = 5 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// Server is the HTTP front end over an app.App.
type Server struct {
	app  *app.App
	echo *echo.Echo
	log  *slog.Logger
}

// New builds the router, middleware, and templates.
func New(a *app.App) (*Server, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = r

	s := &Server{app: a, echo: e, log: a.Log}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxUpload))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.Round(time.Millisecond).String(),
			}
			if v.Error != nil {
				s.log.ErrorContext(c.Request().Context(), "Request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			s.log.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	}))

	e.GET("/", s.handleGeneratePage)
	e.POST("/generate", s.handleGenerate)

	e.GET("/artists", s.handleArtistsPage)
	e.POST("/artists", s.handleCreateArtist)
	e.GET("/artists/export", s.handleExport)
	e.POST("/artists/analyze", s.handleAnalyze)
	e.POST("/artists/:id/update", s.handleUpdateArtist)
	e.POST("/artists/:id/delete", s.handleDeleteArtist)

	e.GET("/history", s.handleHistory)

	return s, nil
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Web UI listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("Shutting down web UI")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

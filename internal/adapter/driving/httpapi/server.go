// Package httpapi exposes the report pipeline over HTTP.
//
// Endpoints:
//
//	GET  /reports           -> registered report types
//	POST /reports/generate  -> run one config (JSON body), 422 on config errors, 500 on unknown errors
//	GET  /files/:name       -> download a generated artifact from the export directory
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/costlocker/reports/internal/application/registry"
	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/logger"
	"github.com/costlocker/reports/internal/shared/types"
)

// Runner generates one report from a raw config.
type Runner interface {
	GenerateReport(ctx context.Context, raw map[string]any) (*entity.RunResult, error)
}

// RunnerFactory binds a runner to the presenter of one request.
type RunnerFactory func(presenter types.Presenter) Runner

// Server is the HTTP front end. Report runs are serialized.
type Server struct {
	echo      *echo.Echo
	registry  *registry.Registry
	runners   RunnerFactory
	exportDir string

	mu sync.Mutex
}

// NewServer registers the routes.
func NewServer(reg *registry.Registry, runners RunnerFactory, exportDir string) *Server {
	s := &Server{
		echo:      echo.New(),
		registry:  reg,
		runners:   runners,
		exportDir: exportDir,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.GET("/reports", s.listReports)
	s.echo.POST("/reports/generate", s.generateReport)
	s.echo.GET("/files/:name", s.downloadFile)
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http.listen", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

type reportInfo struct {
	ID           string                     `json:"id"`
	Title        string                     `json:"title"`
	DateRange    string                     `json:"dateRange"`
	Formats      []string                   `json:"formats"`
	CustomConfig []entity.CustomConfigEntry `json:"customConfig,omitempty"`
	PreviewImage string                     `json:"previewImage,omitempty"`
}

func (s *Server) listReports(c echo.Context) error {
	defs := s.registry.Definitions()
	out := make([]reportInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, reportInfo{
			ID:           d.ID,
			Title:        d.Title,
			DateRange:    d.DateRange,
			Formats:      d.FormatNames(),
			CustomConfig: d.CustomConfig,
			PreviewImage: d.PreviewImage,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type generateResponse struct {
	Result     *entity.RunResult      `json:"result"`
	Violations types.ValidationErrors `json:"violations,omitempty"`
	Progress   []string               `json:"progress"`
	Download   string                 `json:"download,omitempty"`
}

func (s *Server) generateReport(c echo.Context) error {
	raw := map[string]any{}
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   err.Error(),
			"message": "request body must be a JSON run config",
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	progress := &recorder{}
	result, err := s.runners(progress).GenerateReport(c.Request().Context(), raw)
	response := generateResponse{Result: result, Progress: progress.steps}

	if err != nil {
		var logicErr *types.ConfigLogicError
		switch {
		case errors.As(err, &response.Violations):
			return c.JSON(http.StatusUnprocessableEntity, response)
		case errors.As(err, &logicErr), errors.Is(err, types.ErrUnknownReport), errors.Is(err, types.ErrUnknownFormat):
			return c.JSON(http.StatusUnprocessableEntity, response)
		default:
			return c.JSON(http.StatusInternalServerError, response)
		}
	}

	if result.Filesystem != "" {
		response.Download = "/files/" + filepath.Base(result.Filesystem)
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) downloadFile(c echo.Context) error {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return echo.ErrNotFound
	}
	return c.File(filepath.Join(s.exportDir, name))
}

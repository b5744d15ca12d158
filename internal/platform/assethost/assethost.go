// Package assethost serves formpack assets over HTTP for the DOCX asset
// fetcher and for local tooling. It is stateless and read-only.
package assethost

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/paperwork/paperwork/internal/formpacks"
	"github.com/paperwork/paperwork/internal/platform/db"
	"github.com/paperwork/paperwork/internal/platform/middleware"
	"github.com/paperwork/paperwork/internal/platform/telemetry"
	"github.com/paperwork/paperwork/pkg/pagination"
)

// AssetPrefix is the URL prefix assets are served under. An HTTP fetcher
// pointed at "<host>/formpacks" resolves the same relative paths as the
// embedded bundle.
const AssetPrefix = "/formpacks"

// Config wires the host.
type Config struct {
	FS        fs.FS
	Cache     middleware.CacheConfig
	RateLimit middleware.RateLimitConfig
	Timeout   time.Duration
	Logger    zerolog.Logger
	Telemetry *telemetry.Provider
	// DB, when set, is reported on /health/db.
	DB        db.Pinger
}

// Server is the asset host.
type Server struct {
	echo   *echo.Echo
	fsys   fs.FS
	logger zerolog.Logger
}

// New builds the echo instance and registers routes.
func New(cfg Config) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, fsys: cfg.FS, logger: cfg.Logger}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recovery(cfg.Logger))
	e.Use(middleware.Logger(cfg.Logger))
	e.Use(cfg.Telemetry.MetricsMiddleware())
	e.Use(cfg.Telemetry.TracingMiddleware())
	e.Use(middleware.RateLimit(cfg.RateLimit))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(cfg.Timeout))
	e.Use(middleware.ETagMiddleware(cfg.Cache))

	e.GET("/health", s.health)
	if cfg.DB != nil {
		e.GET("/health/db", db.HealthHandler(cfg.DB))
	}
	e.GET("/metrics", cfg.Telemetry.PrometheusHandler())
	e.GET(AssetPrefix, s.listFormpacks)
	e.GET(AssetPrefix+"/*", s.serveAsset)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("starting asset host")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	s.logger.Info().Msg("shutting down asset host")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("asset host stopped")
	return nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type formpackSummary struct {
	ID        string            `json:"id"`
	Version   string            `json:"version"`
	Title     map[string]string `json:"title"`
	Locales   []string          `json:"locales"`
	Templates []string          `json:"templates"`
}

func (s *Server) listFormpacks(c echo.Context) error {
	p := pagination.FromContext(c)
	ids := formpacks.IDs()

	summaries := make([]formpackSummary, 0, len(ids))
	for _, id := range ids {
		m, err := formpacks.LoadManifest(s.fsys, id)
		if errors.Is(err, formpacks.ErrUnknownFormpack) {
			continue
		}
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		summaries = append(summaries, formpackSummary{
			ID:        m.ID,
			Version:   m.Version,
			Title:     m.Title,
			Locales:   m.Locales,
			Templates: m.Templates,
		})
	}

	start, end := p.Window(len(summaries))
	resp := pagination.NewResponse(summaries[start:end], len(summaries), p)
	resp.Links = p.Links(AssetPrefix, len(summaries))
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) serveAsset(c echo.Context) error {
	name := c.Param("*")
	if !fs.ValidPath(name) || name == "." || strings.Contains(name, `\`) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid asset path")
	}

	info, err := fs.Stat(s.fsys, name)
	if err != nil || info.IsDir() {
		return echo.NewHTTPError(http.StatusNotFound, "asset not found")
	}
	body, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "read asset")
	}
	return c.Blob(http.StatusOK, contentType(name), body)
}

func contentType(name string) string {
	switch ext := path.Ext(name); ext {
	case ".json":
		return echo.MIMEApplicationJSONCharsetUTF8
	case ".yaml", ".yml":
		return "application/yaml; charset=utf-8"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return echo.MIMEOctetStream
	}
}

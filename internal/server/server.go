package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cozy-creator/dbi/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server is the local development server: it forwards everything under the
// proxy prefix to the prediction service and optionally serves a web bundle.
type Server struct {
	listenAddr string
	ginEngine  *gin.Engine
	inner      *http.Server
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	if cfg.Proxy == nil {
		return nil, errors.New("proxy config is not set")
	}

	target, err := url.Parse(cfg.Proxy.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy target: %w", err)
	}

	gin.SetMode(getGinMode(cfg.Environment))
	r := gin.New()

	r.Use(logger.SetLogger(
		logger.WithUTC(true),
		logger.WithSkipPath([]string{}),
	))

	r.Use(cors.New(
		cors.Config{
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowOrigins:     []string{"*"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Request-Id"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		},
	))
	r.Use(gin.Recovery())

	s := &Server{
		listenAddr: cfg.Proxy.Address(),
		ginEngine:  r,
		logger:     log,
		inner: &http.Server{
			Handler: r,
			Addr:    cfg.Proxy.Address(),
		},
	}

	s.SetupRoutes(cfg.Proxy.Prefix, target, cfg.Proxy.WebDir)
	return s, nil
}

func (s *Server) Addr() string {
	return s.listenAddr
}

func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

func (s *Server) Start() error {
	s.logger.Info("starting dev proxy", zap.String("addr", s.listenAddr))

	if err := s.inner.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s.logger.Info("stopping dev proxy")

	if err := s.inner.Shutdown(ctx); err != nil {
		return err
	}

	return nil
}

func getGinMode(env string) string {
	switch env {
	case config.EnvironmentDevelopment:
		return gin.DebugMode
	case config.EnvironmentTest:
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

func serveStatic(webDir string) gin.HandlerFunc {
	return static.Serve("/", static.LocalFile(webDir, true))
}

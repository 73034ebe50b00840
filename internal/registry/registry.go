package registry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/example/nodeplugin/internal/manager"
	"github.com/example/nodeplugin/pkg/logger"
	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Plugins is the registry state the API reads and changes.
type Plugins interface {
	Register(config plugin.PluginConfig) error
	StopPlugin(kind string) error
	Get(kind string) (manager.PluginState, bool)
	List() []manager.PluginState
}

// Server exposes plugin registration over HTTP.
type Server struct {
	plugins Plugins
	engine  *gin.Engine
	logger  *zap.SugaredLogger
}

func NewServer(plugins Plugins) *Server {
	s := &Server{
		plugins: plugins,
		logger:  logger.NewLogger("registry"),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.accessLog)
	engine.GET("/healthz", s.Healthz)
	api := engine.Group("/api/plugins")
	api.POST("", s.RegisterPlugin)
	api.GET("", s.ListPlugins)
	api.GET("/:kind", s.GetPlugin)
	api.DELETE("/:kind", s.DeregisterPlugin)
	s.engine = engine
	return s
}

// Handler returns the http handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("registry listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) accessLog(ctx *gin.Context) {
	start := time.Now()
	ctx.Next()
	s.logger.Debugw("request",
		"method", ctx.Request.Method,
		"path", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"elapsed", time.Since(start))
}

func (s *Server) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterPlugin adds or replaces a remote plugin. Omitted enabled and
// health_check flags default to true.
func (s *Server) RegisterPlugin(ctx *gin.Context) {
	reg := plugin.Registration{Enabled: true, HealthCheck: true}
	if err := ctx.ShouldBindJSON(&reg); err != nil {
		errorResponse(ctx, http.StatusBadRequest, err)
		return
	}

	config, err := reg.Config()
	if err != nil {
		errorResponse(ctx, http.StatusBadRequest, err)
		return
	}
	if !config.Enabled {
		if err := s.plugins.StopPlugin(config.Kind); err == nil {
			s.logger.Infow("plugin disabled", "kind", config.Kind)
		}
		ctx.JSON(http.StatusOK, gin.H{"kind": config.Kind, "enabled": false})
		return
	}

	if err := s.plugins.Register(config); err != nil {
		s.logger.Errorw("failed to register plugin", "kind", config.Kind, "err", err)
		errorResponse(ctx, http.StatusBadGateway, err)
		return
	}

	state, _ := s.plugins.Get(config.Kind)
	s.logger.Infow("plugin registered", "kind", config.Kind, "endpoint", config.Endpoint, "status", state.Status)
	ctx.JSON(http.StatusCreated, state)
}

func (s *Server) ListPlugins(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"plugins": s.plugins.List()})
}

func (s *Server) GetPlugin(ctx *gin.Context) {
	state, ok := s.plugins.Get(ctx.Param("kind"))
	if !ok {
		errorResponse(ctx, http.StatusNotFound, errors.New("plugin not found"))
		return
	}
	ctx.JSON(http.StatusOK, state)
}

func (s *Server) DeregisterPlugin(ctx *gin.Context) {
	kind := ctx.Param("kind")
	if err := s.plugins.StopPlugin(kind); err != nil {
		errorResponse(ctx, http.StatusNotFound, err)
		return
	}
	s.logger.Infow("plugin deregistered", "kind", kind)
	ctx.Status(http.StatusNoContent)
}

func errorResponse(ctx *gin.Context, code int, err error) {
	ctx.JSON(code, gin.H{"error": err.Error()})
}

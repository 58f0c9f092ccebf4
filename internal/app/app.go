// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/ReelBoard/internal/api"
	"github.com/Corphon/ReelBoard/internal/config"
	"github.com/Corphon/ReelBoard/internal/llm"
	_ "github.com/Corphon/ReelBoard/internal/llm/providers/google"
	"github.com/Corphon/ReelBoard/internal/services"
	"github.com/Corphon/ReelBoard/internal/storage"
	"github.com/Corphon/ReelBoard/internal/utils"
)

const shutdownTimeout = 30 * time.Second

// App wires the storyboard services behind the HTTP router
type App struct {
	cfg      *config.Config
	metrics  *utils.APIMetrics
	hub      *api.ProjectHub
	projects *services.ProjectService
	router   *gin.Engine
	server   *http.Server
}

// Option customizes construction
type Option func(*options)

type options struct {
	provider    llm.Provider
	store       storage.ProjectStore
	images      services.ImageSource
	withRuntime bool
}

// WithProvider bypasses the provider registry
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithStore replaces the in-memory project store
func WithStore(s storage.ProjectStore) Option {
	return func(o *options) { o.store = s }
}

// WithImageSource replaces the keyword image source
func WithImageSource(src services.ImageSource) Option {
	return func(o *options) { o.images = src }
}

// WithoutRuntimeMetrics skips the go/process collectors
func WithoutRuntimeMetrics() Option {
	return func(o *options) { o.withRuntime = false }
}

// New builds the application from configuration. The logger is expected to be
// initialized by the caller.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	o := &options{withRuntime: true}
	for _, opt := range opts {
		opt(o)
	}

	metrics := utils.NewAPIMetrics(o.withRuntime)

	provider := o.provider
	if provider == nil {
		p, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig())
		if err != nil {
			return nil, fmt.Errorf("初始化LLM提供商失败: %w", err)
		}
		provider = p
	}

	llmOpts := []services.LLMOption{services.WithMetrics(metrics)}
	if cfg.GeminiModel != "" {
		llmOpts = append(llmOpts, services.WithModel(cfg.GeminiModel))
	}
	if cfg.GeminiTimeout > 0 {
		llmOpts = append(llmOpts, services.WithTimeout(cfg.GeminiTimeout))
	}
	llmService := services.NewLLMService(provider, cfg.LLMProvider, llmOpts...)
	scripts := services.NewScriptService(llmService)

	images := o.images
	if images == nil {
		images = services.NewKeywordImageSource(cfg.ImageBaseURL, rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	store := o.store
	if store == nil {
		store = storage.NewMemoryProjectStore()
	}

	hub := api.NewProjectHub(metrics)
	projects := services.NewProjectService(store, scripts, images, hub, metrics)

	handler := api.NewHandler(projects, hub, api.NewResponseHelper(metrics),
		llmService.GetProviderName(), llmService.GetDefaultModel())
	router := api.SetupRouter(handler, api.RouterConfig{
		DebugMode:   cfg.DebugMode,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     metrics,
	})

	return &App{
		cfg:      cfg,
		metrics:  metrics,
		hub:      hub,
		projects: projects,
		router:   router,
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Router exposes the HTTP handler
func (a *App) Router() http.Handler {
	return a.router
}

// Projects exposes the project service
func (a *App) Projects() *services.ProjectService {
	return a.projects
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		utils.GetLogger().Info("HTTP server listening", map[string]interface{}{"addr": a.server.Addr})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("启动服务器失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	utils.GetLogger().Info("Shutting down HTTP server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 先停止 hub，关闭 websocket 连接
	stopHub()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器强制关闭: %w", err)
	}
	return nil
}

// InitLogging configures the global logger from cfg
func InitLogging(cfg *config.Config) error {
	if err := utils.InitLogger(filepath.Join(cfg.LogDir, "reelboard.log")); err != nil {
		return err
	}
	level := utils.ParseLogLevel(cfg.LogLevel)
	if cfg.DebugMode {
		level = utils.DEBUG
	}
	utils.GetLogger().SetLogLevel(level)
	return nil
}

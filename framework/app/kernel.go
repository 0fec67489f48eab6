package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/armature-dev/armature/framework/component"
	"github.com/armature-dev/armature/framework/config"
	"github.com/armature-dev/armature/framework/container"
	armhttp "github.com/armature-dev/armature/framework/http"
	"github.com/armature-dev/armature/framework/lifecycle"
	"github.com/armature-dev/armature/framework/metrics"
	"github.com/armature-dev/armature/framework/routing"
	"github.com/armature-dev/armature/framework/scanner"
)

// Tokens the kernel binds on behalf of the framework, resolvable by any
// component like their own declarations.
const (
	TokenConfig component.Token = "config"
	TokenLogger component.Token = "logger"
	TokenRouter component.Token = "router"
)

// Application is the top-level kernel: it owns the configuration, the
// logger, the component registry, the lifecycle registry, the resolution
// engine, the scanner, the router, and the metrics registry, and wires
// them into each other.
//
//	application, err := app.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	application.RegisterModule(myapp.Module())
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	registry  *component.Registry
	lifecycle *lifecycle.Registry
	engine    *container.Container
	scanner   *scanner.Scanner
	router    *routing.Router
	metrics   *metrics.Registry

	booted    bool
	srv       *http.Server
	sweepStop chan struct{}
	stopOnce  sync.Once
}

// New loads configuration, builds the logger, and assembles the kernel.
// Middleware is attached here rather than at boot: chi refuses Use calls
// once the first route is mounted.
func New(envFiles ...string) (*Application, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)

	registry := component.NewRegistry()
	lc := lifecycle.New(lifecycle.WithLogger(log))
	engine := container.New(
		container.WithLogger(log),
		container.WithDefinitions(registry),
		container.WithLifecycle(lc),
		container.WithRetryDelay(cfg.Container.RetryDelay),
	)
	engine.SetDeferredResolution(cfg.Container.DeferredResolution)

	a := &Application{
		cfg:       cfg,
		log:       log,
		registry:  registry,
		lifecycle: lc,
		engine:    engine,
		scanner:   scanner.New(registry, engine, scanner.WithLogger(log)),
		router:    routing.New(),
		metrics:   metrics.New(),
	}

	a.router.Middleware(
		middleware.RealIP,
		routing.RequestID(nil),
		routing.RequestLogger(log),
		middleware.Recoverer,
		routing.CleanupAfter(a.endRequest),
	)

	a.metrics.ObserveContainer(engine.Stats)
	a.metrics.ObserveLifecycle(lc.Stats)

	for token, value := range map[component.Token]any{
		TokenConfig: cfg,
		TokenLogger: log,
		TokenRouter: a.router,
	} {
		if err := engine.Register(token, container.Value(value)); err != nil {
			return nil, fmt.Errorf("app: binding [%s]: %w", token, err)
		}
	}

	return a, nil
}

// RegisterModule queues component modules for the next Boot.
func (a *Application) RegisterModule(mods ...component.Module) {
	a.scanner.Add(mods...)
}

// Boot scans the registered modules, then — first time only — mounts
// every controller's declared routes and the diagnostics endpoints.
// Re-invoking Boot re-scans (picking up modules registered since) without
// touching the already-mounted routes.
func (a *Application) Boot() error {
	if err := a.scanner.Scan(); err != nil {
		return err
	}
	if a.booted {
		return nil
	}
	if err := a.mountControllers(); err != nil {
		return err
	}
	a.mountDiagnostics()
	a.booted = true

	a.log.Info("application booted",
		"name", a.cfg.App.Name,
		"env", a.cfg.App.Env,
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"cpus", runtime.NumCPU(),
	)
	return nil
}

// mountControllers turns every recorded route descriptor into a real
// route. Controllers are resolved per request, with the id the request-id
// middleware assigned.
func (a *Application) mountControllers() error {
	for _, token := range a.registry.Tokens(component.CategoryController) {
		routes := a.registry.Routes(token)
		if len(routes) == 0 {
			continue
		}
		if err := a.router.Controller(token, routes, a.resolveController); err != nil {
			return fmt.Errorf("app: mounting [%s]: %w", token, err)
		}
		a.log.Debug("mounted controller", "token", token, "routes", len(routes))
	}
	return nil
}

func (a *Application) mountDiagnostics() {
	a.router.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	a.router.Get("/_armature/stats", a.handleStats)
}

// handleStats reports engine and lifecycle state, including every pending
// deferred resolution.
func (a *Application) handleStats(w http.ResponseWriter, r *http.Request) {
	armhttp.NewResponse(w).Success(map[string]any{
		"container": a.engine.Stats(),
		"lifecycle": a.lifecycle.Stats(),
		"pending":   a.engine.PendingResolutions(),
	})
}

// resolveController is the router's per-request resolver. Failure detail
// is logged here; the HTTP layer reports only which step failed.
func (a *Application) resolveController(token component.Token, requestID string) (any, error) {
	instance, err := a.engine.ResolveForRequest(token, requestID)
	if err != nil {
		a.log.Error("controller resolution failed",
			"token", token, "request_id", requestID, "error", err)
	}
	return instance, err
}

// endRequest closes out a request's component lifetimes: end and destroy
// hooks run first, then the instance cache is evicted.
func (a *Application) endRequest(requestID string) {
	a.lifecycle.CleanupRequest(requestID)
	a.engine.ClearRequestInstances(requestID)
}

// Run boots the application (if needed) and serves HTTP until the context
// is cancelled — hand it a signal.NotifyContext for SIGINT/SIGTERM
// handling. On cancellation the server drains within the configured
// shutdown timeout, then tracked instances are torn down.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}

	a.srv = &http.Server{
		Addr:    a.cfg.Server.Addr(),
		Handler: a.router,
	}
	a.startSweeper()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "addr", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if stopErr := a.Shutdown(); err == nil {
			err = stopErr
		}
		return err
	case <-ctx.Done():
		a.log.Info("shutdown requested")
		return a.Shutdown()
	}
}

// Shutdown drains the HTTP server (when Run started one) within the
// configured timeout, stops the transient sweeper, and tears down tracked
// instances: requests, then transients, then singletons in reverse
// registration order.
func (a *Application) Shutdown() error {
	var err error
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		err = a.srv.Shutdown(ctx)
	}
	a.stopOnce.Do(func() {
		if a.sweepStop != nil {
			close(a.sweepStop)
		}
	})
	a.lifecycle.Shutdown()
	a.log.Info("application stopped")
	return err
}

// startSweeper periodically destroys tracked transient instances. A zero
// interval disables the sweep.
func (a *Application) startSweeper() {
	interval := a.cfg.Container.SweepInterval
	if interval <= 0 {
		return
	}
	a.sweepStop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.lifecycle.CleanupTransient()
			case <-a.sweepStop:
				return
			}
		}
	}()
}

// ── Accessors ────────────────────────────────────────────────────────────────

func (a *Application) Config() *config.Config          { return a.cfg }
func (a *Application) Logger() *slog.Logger            { return a.log }
func (a *Application) Router() *routing.Router         { return a.router }
func (a *Application) Engine() *container.Container    { return a.engine }
func (a *Application) Components() *component.Registry { return a.registry }

// Environment returns APP_ENV's value.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }
func (a *Application) Version() string     { return "0.1.0" }

// newLogger builds the slog handler the configuration asks for. Debug
// level adds source locations.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With("app", cfg.App.Name)
}

// ── Controller base ──────────────────────────────────────────────────────────

// Controller is an embeddable base for HTTP controllers, providing
// request/response wrapper factories.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *armhttp.Request {
	return armhttp.NewRequest(r)
}

func (c *Controller) Response(w http.ResponseWriter) *armhttp.Response {
	return armhttp.NewResponse(w)
}

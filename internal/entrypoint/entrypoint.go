package entrypoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/analytics"
	"github.com/mrlokans/librarydesk/internal/assistant"
	"github.com/mrlokans/librarydesk/internal/audit"
	"github.com/mrlokans/librarydesk/internal/auth"
	"github.com/mrlokans/librarydesk/internal/catalog"
	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/database"
	auditrepo "github.com/mrlokans/librarydesk/internal/database/audit"
	"github.com/mrlokans/librarydesk/internal/database/books"
	"github.com/mrlokans/librarydesk/internal/demo"
	http_controllers "github.com/mrlokans/librarydesk/internal/http"
	"github.com/mrlokans/librarydesk/internal/logger"
	"github.com/mrlokans/librarydesk/internal/scheduler"
	"github.com/mrlokans/librarydesk/internal/tasks"
	"github.com/mrlokans/librarydesk/internal/telemetry"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App is the wired application: the router plus everything that has to be
// stopped when the server exits.
type App struct {
	Router *gin.Engine

	cleanups []ShutdownFunc
}

func (a *App) onShutdown(fn ShutdownFunc) {
	a.cleanups = append(a.cleanups, fn)
}

// Shutdown runs cleanups in reverse order of registration.
func (a *App) Shutdown(ctx context.Context) {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i](ctx)
	}
	a.cleanups = nil
}

// Build opens the database and wires every component. On error everything
// already started is shut down.
func Build(ctx context.Context, cfg *config.Config, version string) (app *App, err error) {
	log := logger.WithComponent("entrypoint")
	app = &App{}
	defer func() {
		if err != nil {
			app.Shutdown(context.Background())
			app = nil
		}
	}()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		return app, err
	}
	app.onShutdown(func(ctx context.Context) {
		if err := shutdownTracing(ctx); err != nil {
			log.WithError(err).Warn("Error flushing traces")
		}
	})

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return app, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.onShutdown(func(context.Context) {
		if err := db.Close(); err != nil {
			log.WithError(err).Error("Error closing database")
		}
	})

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	app.onShutdown(func(context.Context) { auditService.Wait() })

	bookRepo := books.NewRepository(db.DB)

	if !cfg.AIConfigured() {
		log.Warn("CLOUDFLARE_ACCOUNT_ID or CLOUDFLARE_AI_TOKEN is not set, the assistant will answer with a fallback message")
	}
	assistantService := assistant.NewServiceFromConfig(cfg.AI, cfg.Redis)
	assistantService.SetRecorder(auditService)

	catalogService := catalog.NewService(bookRepo, assistantService)
	catalogService.SetRecorder(auditService)

	enqueuer, err := startTasks(cfg, auditService, app)
	if err != nil {
		return app, err
	}

	cleanupScheduler := scheduler.NewAuditCleanupScheduler(enqueuer, cfg.Audit)
	if err := cleanupScheduler.Start(); err != nil {
		return app, err
	}
	app.onShutdown(func(context.Context) { cleanupScheduler.Stop() })

	// Sessions only persist in SQLite; other drivers keep them in memory
	sessionManager, err := auth.NewSessionManager(sqlDBForSessions(db, cfg.Database), cfg.Auth)
	if err != nil {
		return app, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	csrfSecret, err := csrfKey(cfg.Auth.SessionSecret)
	if err != nil {
		return app, err
	}

	var authMiddleware *auth.Middleware
	if cfg.Auth.Mode == config.AuthModeBasic {
		if cfg.Auth.PasswordHash == "" {
			log.Warn("AUTH_MODE=basic without AUTH_PASSWORD_HASH: only the API token can change the catalog")
		}
		limiter := auth.NewRateLimiter(auth.DefaultRateLimitConfig())
		app.onShutdown(func(context.Context) { limiter.Stop() })
		authMiddleware = auth.NewMiddleware(cfg.Auth, limiter)
		log.WithField("username", cfg.Auth.Username).Info("Authentication mode: basic")
	} else {
		log.Info("Authentication mode: none (no authentication required)")
	}

	var demoMiddleware *demo.Middleware
	if cfg.Demo.Enabled {
		log.Info("Demo mode enabled - write operations will be blocked")
		demoMiddleware = demo.NewMiddleware(true, sessionManager)
	}

	app.Router = http_controllers.NewRouter(http_controllers.RouterConfig{
		Catalog:        catalogService,
		Books:          bookRepo,
		Asker:          assistantService,
		Audit:          auditService,
		Database:       db,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		APIToken:       cfg.Auth.APIToken,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		DemoMiddleware: demoMiddleware,
		Analytics:      analytics.FromConfig(cfg.Analytics),
		Features: http_controllers.Features{
			Assistant:   cfg.AIConfigured(),
			AnswerCache: answerCacheName(cfg.Redis),
			TaskQueue:   cfg.Tasks.Enabled,
		},
		Version:        version,
	})

	return app, nil
}

// startTasks starts the backlite queue when enabled. Without it audit
// cleanups run inline on the cron goroutine.
func startTasks(cfg *config.Config, auditService *audit.Service, app *App) (scheduler.CleanupEnqueuer, error) {
	inline := scheduler.EnqueuerFunc(func(ctx context.Context, days int) error {
		return tasks.RunAuditCleanup(ctx, auditService, days)
	})
	if !cfg.Tasks.Enabled {
		return inline, nil
	}

	taskClient, err := tasks.NewClient(taskDBPath(cfg.Database), tasks.ConfigFrom(cfg.Tasks))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task queue: %w", err)
	}
	app.onShutdown(func(context.Context) {
		if err := taskClient.Close(); err != nil {
			logger.WithComponent("entrypoint").WithError(err).Error("Error closing task client")
		}
	})

	taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))

	taskCtx, cancel := context.WithCancel(context.Background())
	taskClient.Start(taskCtx)
	app.onShutdown(func(ctx context.Context) {
		taskClient.Stop(ctx)
		cancel()
	})

	return taskClient, nil
}

func answerCacheName(cfg config.Redis) string {
	if cfg.Addr != "" {
		return "redis"
	}
	return "memory"
}

func taskDBPath(cfg config.Database) string {
	if cfg.Driver == config.DatabaseDriverPostgres || cfg.Path == "" {
		return config.DefaultDatabasePath
	}
	return cfg.Path
}

func sqlDBForSessions(db *database.Database, cfg config.Database) *sql.DB {
	if cfg.Driver != "" && cfg.Driver != config.DatabaseDriverSQLite {
		return nil
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil
	}
	return sqlDB
}

func csrfKey(secret string) ([]byte, error) {
	if secret != "" {
		return auth.SecretKey(secret), nil
	}
	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	logger.WithComponent("entrypoint").Info("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return auth.SecretKey(generated), nil
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts down within
// SHUTDOWN_TIMEOUT_IN_SECONDS.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	log := logger.WithComponent("entrypoint")
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.WithField("timeout", timeout).Info("Shutdown Server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server Shutdown")
	}

	// Background work stops after the last request has been answered
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.WithComponent("entrypoint")
	log.WithField("version", version).Info("Starting librarydesk")

	app, err := Build(context.Background(), cfg, version)
	if err != nil {
		log.WithError(err).Fatal("Startup failed")
	}

	Serve(app.Router, cfg, app.Shutdown)
}

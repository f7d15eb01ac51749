// Package entrypoint assembles the application and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/avolkau/librarium/internal/audit"
	"github.com/avolkau/librarium/internal/auth"
	"github.com/avolkau/librarium/internal/catalog"
	"github.com/avolkau/librarium/internal/config"
	"github.com/avolkau/librarium/internal/covers"
	"github.com/avolkau/librarium/internal/database"
	auditRepo "github.com/avolkau/librarium/internal/database/audit"
	"github.com/avolkau/librarium/internal/database/books"
	"github.com/avolkau/librarium/internal/database/users"
	"github.com/avolkau/librarium/internal/enrich"
	http_controllers "github.com/avolkau/librarium/internal/http"
	"github.com/avolkau/librarium/internal/overdue"
	"github.com/avolkau/librarium/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains it
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before draining the server
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the whole application together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarium v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)
	eventRepo := auditRepo.NewRepository(db.DB)

	auditService := audit.NewService(eventRepo)
	if cfg.Audit.Dir != "" {
		auditService.SetArchiver(audit.NewArchiver(cfg.Audit.Dir))
	}

	catalogService := catalog.NewService(bookRepo, catalog.Terms{
		LoanPeriod:    cfg.Lending.LoanPeriod,
		DailyFineRate: cfg.Lending.DailyFineRate,
	})
	catalogService.SetAuditLogger(auditService)

	// Cover handling: uploads are resized and inlined, remote
	// suggestion URLs are cached on disk.
	coverProcessor := covers.NewProcessor(cfg.Covers.MaxWidth, cfg.Covers.JPEGQuality)
	coverCacheDir := cfg.Covers.CacheDir
	if coverCacheDir == "" {
		coverCacheDir = filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	}
	coverCache, err := covers.NewCache(coverCacheDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
	} else {
		log.Printf("Cover cache initialized at %s", coverCacheDir)
	}

	// Enrichment is best effort and optional: without an API key the
	// endpoints report the provider as not configured.
	provider := enrich.NewGenerativeClient(cfg.Enrichment)
	if !provider.Configured() {
		log.Printf("WARNING: Enrichment API key is not set. Suggestions will be disabled. Set 'ENRICHMENT_API_KEY' to enable.")
	}
	enricher := enrich.NewEnricher(provider, bookRepo)
	if coverCache != nil {
		enricher.SetCoverInvalidator(coverCache)
	}

	// Task queue for background enrichment and audit retention
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichBookQueue(enricher, auditService),
			tasks.NewCleanupAuditEventsQueue(eventRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
		taskClient.StartCleanupSchedule(taskCtx, 24*time.Hour, cfg.Audit.RetentionDays)
	}

	// Authentication: role-scoped cookie sessions
	authService := auth.NewService(userRepo, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	hasUsers, _ := authService.HasUsers()
	if !hasUsers {
		log.Printf("No users found. Use 'libctl user create-admin' to create an administrator account.")
	}

	// Overdue sweep
	sweeper := overdue.NewSweeper(catalogService, auditService, cfg.Overdue)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	if err := sweeper.Start(sweepCtx); err != nil {
		log.Fatalf("Failed to start overdue sweep: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Catalog:        catalogService,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		AuditService:   auditService,
		AuditRepo:      eventRepo,
		Enricher:       enricher,
		CoverProcessor: coverProcessor,
		CoverCache:     coverCache,
		TaskClient:     taskClient,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sweepCancel()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

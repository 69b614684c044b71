package entrypoint

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/librarian/internal/activity"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	activityRepo "github.com/mrlokans/librarian/internal/database/activity"
	http_controllers "github.com/mrlokans/librarian/internal/http"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/metrics"
	"github.com/mrlokans/librarian/internal/middleware"
	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	config.ConfigureLogging(cfg.Logging)
	log.Printf("Starting Librarian v%s", version)

	// Initialize database
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	events := activity.NewService(activityRepo.NewRepository(db.DB))

	options := []library.Option{
		library.WithActivity(events),
		library.WithLoanPeriod(cfg.Loans.PeriodDays),
	}
	if cfg.Metrics.Enabled {
		options = append(options, library.WithCounters(metrics.Counters{}))
	}
	svc := library.NewService(db, options...)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var queue enqueuer
	var taskQueue http_controllers.TaskQueue
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewScanOverdueLoansQueue(svc, events),
			tasks.NewCleanupActivityQueue(events),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		taskClient.Start(taskCtx)

		queue = taskClient
		taskQueue = taskClient
	}

	// Periodic jobs
	jobs := scheduler.New()
	if cfg.Overdue.ScanEnabled {
		if err := jobs.Add(overdueScanJob(cfg.Overdue.ScanSchedule, queue, svc, events)); err != nil {
			log.Fatalf("Failed to schedule overdue scan: %v", err)
		}
	}
	if cfg.Activity.RetentionDays > 0 && cfg.Activity.CleanupSchedule != "" {
		if err := jobs.Add(activityCleanupJob(cfg.Activity.CleanupSchedule, cfg.Activity.RetentionDays, queue, events)); err != nil {
			log.Fatalf("Failed to schedule activity cleanup: %v", err)
		}
	}
	jobs.Start(context.Background())

	// Sessions live in the SQLite database; Postgres deployments keep them in memory
	var sqlDB *sql.DB
	if db.Driver == config.DriverSQLite {
		sqlDB, err = db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}
	}
	sessions, err := middleware.NewSessionManager(sqlDB, cfg.Session)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	var csrfKey []byte
	if cfg.CSRF.Enabled {
		csrfKey, err = middleware.CSRFKey(cfg.CSRF.Secret)
		if err != nil {
			log.Fatalf("Failed to prepare CSRF key: %v", err)
		}
		if cfg.CSRF.Secret == "" {
			log.Printf("Generated CSRF key (set CSRF_SECRET to keep forms valid across restarts)")
		}
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Library:               svc,
		Activity:              events,
		Database:              db,
		Sessions:              sessions,
		CSRFKey:               csrfKey,
		SecureCookies:         cfg.Session.SecureCookies,
		TemplatesPath:         cfg.UI.TemplatesPath,
		StaticPath:            cfg.UI.StaticPath,
		Metrics:               cfg.Metrics.Enabled,
		TaskQueue:             taskQueue,
		ActivityRetentionDays: cfg.Activity.RetentionDays,
		Version:               version,
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		jobs.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

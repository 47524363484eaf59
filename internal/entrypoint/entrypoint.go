package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kotobi/internal/audit"
	"github.com/mrlokans/kotobi/internal/config"
	http_controllers "github.com/mrlokans/kotobi/internal/http"
	"github.com/mrlokans/kotobi/internal/scheduler"
	"github.com/mrlokans/kotobi/internal/services"
	"github.com/mrlokans/kotobi/internal/tasks"
)

// auditCleanupInterval is how often saved import documents are pruned.
const auditCleanupInterval = 24 * time.Hour

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for SIGINT or SIGTERM, then give in-flight requests the
	// configured timeout to finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

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
	log.Printf("Starting Kotobi v%s", version)

	tracker, err := services.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize book store: %v", err)
	}
	defer func() {
		if err := tracker.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	log.Printf("Database: %s", cfg.Database.Path)
	log.Printf("Cover storage: %s", cfg.Covers.Dir)
	log.Printf("Export directory: %s", cfg.Export.Dir)

	routerCfg := http_controllers.RouterConfig{
		Tracker:      tracker,
		Database:     tracker.Database(),
		ExportPrefix: cfg.Export.Prefix,
		ImportDir:    cfg.Export.Dir,
		Version:      version,
	}

	// Background work shares one context, cancelled on shutdown
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromSettings(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewExportQueue(tracker),
			tasks.NewImportQueue(tracker),
			tasks.NewPruneImportDocumentsQueue(audit.NewAuditor(cfg.Audit.Dir)),
		)
		go taskClient.Start(bgCtx)
		go scheduleAuditCleanup(bgCtx, taskClient, cfg.Audit.RetentionDays)

		routerCfg.TaskQueue = taskClient
	} else {
		log.Printf("Task queue disabled; asynchronous export and file import are unavailable")
	}

	// Automatic backups
	var backups *scheduler.BackupScheduler
	if cfg.Backup.Enabled {
		var queue scheduler.TaskEnqueuer
		if taskClient != nil {
			queue = taskClient
		}
		backups = scheduler.NewBackupScheduler(tracker, queue, cfg.Backup.Schedule)
		if err := backups.Start(bgCtx); err != nil {
			log.Fatalf("Failed to start backup scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if backups != nil {
			backups.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
	}

	Serve(router, cfg, onShutdown)
}

// scheduleAuditCleanup enqueues a cleanup of saved import documents at
// startup and then once per auditCleanupInterval.
func scheduleAuditCleanup(ctx context.Context, queue scheduler.TaskEnqueuer, retentionDays int) {
	enqueue := func() {
		if _, err := queue.Enqueue(tasks.NewPruneImportDocumentsTask(time.Now(), retentionDays)); err != nil {
			log.Printf("Audit: failed to enqueue cleanup: %v", err)
		}
	}

	enqueue()
	ticker := time.NewTicker(auditCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/console"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/metrics"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/services"
	"github.com/mrlokans/library/internal/storage/backends"
	"github.com/mrlokans/library/internal/storage/snapshot"
	"github.com/mrlokans/library/internal/tasks"
	"github.com/mrlokans/library/internal/telemetry"
)

// App holds the fully constructed services for one process.
type App struct {
	Config *config.Config

	Stores       *backends.Stores
	Catalog      *services.CatalogService
	Members      *services.MembershipService
	Lending      *services.LendingService
	Orchestrator *services.LendingOrchestrator
	Reconciler   *services.Reconciler

	Metrics *metrics.Collector
	Audit   *audit.Service
	Tasks   *tasks.Client // nil when the task queue is disabled

	tracer *sdktrace.TracerProvider
}

// Build opens the configured backends, seeds an empty catalog, reconciles
// imported data and wires every service. Callers must Close the App.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	stores, err := backends.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Stores:  stores,
		Catalog: services.NewCatalogService(stores.Catalog),
		Members: services.NewMembershipService(stores.Users),
		Lending: services.NewLendingService(stores.Loans),
		Metrics: metrics.New(),
		Audit:   audit.NewService(audit.NewAuditor(cfg.Audit.Dir)),
	}
	app.Reconciler = services.NewReconciler(app.Catalog, app.Members, app.Lending, cfg.Lending.DefaultLoanDays)

	app.tracer, err = telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	if cfg.Tasks.Enabled {
		app.Tasks, err = tasks.NewClient(cfg.Tasks.DatabasePath, tasks.ConfigFromSettings(cfg.Tasks))
		if err != nil {
			log.Printf("[TASK] queue unavailable, background verification disabled: %v", err)
			app.Tasks = nil
		} else {
			app.Tasks.Register(
				tasks.NewVerifyBookConsistencyQueue(app.Reconciler),
				tasks.NewConsistencyCheckQueue(app.Reconciler, app.ObserveReport),
			)
		}
	}

	sinks := services.MultiSignal{services.LogSignal, app.Audit, app.Metrics}
	if app.Tasks != nil {
		sinks = append(sinks, tasks.NewVerificationSignal(app.Tasks))
	}
	app.Orchestrator = services.NewLendingOrchestrator(app.Catalog, app.Members, app.Lending,
		services.WithDefaultLoanDays(cfg.Lending.DefaultLoanDays),
		services.WithMetrics(app.Metrics),
		services.WithSignal(sinks),
		services.WithBookLocks(app.Reconciler.BookLocks()),
	)

	seeded, err := app.seed(cfg.Bootstrap.SeedPath)
	if err != nil {
		log.Printf("[BOOTSTRAP] seeding skipped: %v", err)
	}
	if seeded > 0 || cfg.Bootstrap.ReconcileOnStart {
		report, err := app.Reconciler.Bootstrap(ctx)
		app.ObserveReport("bootstrap", report, err)
		if err != nil {
			log.Printf("[BOOTSTRAP] reconciliation failed: %v", err)
		} else {
			log.Printf("[BOOTSTRAP] %d placeholder loans created, %d issues left", len(report.Repaired), len(report.Issues))
		}
	}

	return app, nil
}

// seed imports the snapshot into an empty catalog and returns the number of books imported.
func (a *App) seed(path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	existing, err := a.Catalog.ListBooks()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}

	books, err := snapshot.Load(path)
	if err != nil {
		return 0, err
	}
	if err := a.Catalog.Import(books); err != nil {
		return 0, fmt.Errorf("failed to import snapshot: %w", err)
	}
	log.Printf("[BOOTSTRAP] seeded %d books from %s", len(books), path)
	return len(books), nil
}

// ObserveReport feeds a consistency run into the metrics gauges and the audit trail.
func (a *App) ObserveReport(action string, report services.ConsistencyReport, err error) {
	if err == nil {
		a.Metrics.ObserveReport(report, time.Now())
	}
	a.Audit.LogReconcile(action, report, err)
}

// Router builds the HTTP API over the app's services.
func (a *App) Router(version string) *gin.Engine {
	routerCfg := http_controllers.RouterConfig{
		Catalog:        a.Catalog,
		Members:        a.Members,
		Lending:        a.Lending,
		Orchestrator:   a.Orchestrator,
		Checker:        a.Reconciler,
		MetricsHandler: a.Metrics.Handler(),
		StaticPath:     a.Config.UI.StaticPath,
		ReadOnly:       a.Config.HTTP.ReadOnly,
		Version:        version,
	}
	if db := a.Stores.Database(); db != nil {
		routerCfg.Database = db
	}
	if a.Tasks != nil {
		routerCfg.TaskQueue = a.Tasks
	}
	return http_controllers.NewRouter(routerCfg)
}

// Close releases the task database, the store connections and the tracer.
func (a *App) Close(ctx context.Context) {
	if a.Tasks != nil {
		if err := a.Tasks.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}
	if a.Stores != nil {
		if err := a.Stores.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}
}

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 sends SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work after the last request has drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// Run starts the HTTP API with its scheduler and task workers and blocks until SIGINT or SIGTERM.
func Run(cfg *config.Config, version string) error {
	log.Printf("Starting Library v%s", version)

	ctx := context.Background()
	app, err := Build(ctx, cfg)
	if err != nil {
		return err
	}

	consistency := scheduler.NewConsistencyScheduler(app.Reconciler, app.ObserveReport, cfg.Consistency)
	if err := consistency.Start(ctx); err != nil {
		log.Printf("[SCHEDULER] WARNING: %v", err)
	}

	var taskCancel context.CancelFunc
	if app.Tasks != nil {
		var taskCtx context.Context
		taskCtx, taskCancel = context.WithCancel(ctx)
		go app.Tasks.Start(taskCtx)
	}

	onShutdown := func(ctx context.Context) {
		consistency.Stop()
		if app.Tasks != nil {
			app.Tasks.Stop(ctx)
			taskCancel()
		}
		app.Close(ctx)
	}

	Serve(app.Router(version), cfg, onShutdown)
	return nil
}

// RunConsole runs the interactive menu over in and out until the user exits.
func RunConsole(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	app, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	menu := console.NewMenu(app.Catalog, app.Members, app.Lending, app.Orchestrator, in, out)
	return menu.Run(ctx)
}

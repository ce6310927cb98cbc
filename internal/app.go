package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"rucd/internal/controllers"
	"rucd/internal/fleet"
	"rucd/internal/providers"
	"rucd/internal/reminders"
	"rucd/internal/reminders/interfaces"
	"rucd/internal/services"
	"rucd/internal/structures"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	WebServer *http.Server
}

func NewApp(apiController *controllers.ApiController, healthController *controllers.HealthController, scheduler interfaces.SchedulerInterface, notifier reminders.NotifierInterface, fileManager *fleet.FileManager, service services.FleetServiceInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) (*App, error) {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	// Wrap API routes with metrics middleware
	instrumentedAPI := providers.MetricsMiddleware(metrics, logger, apiMux)

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	if err := fileManager.LoadFromFile(conf.Persistence.FilePath, conf.Persistence.BackupPath); err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}

	// Write-through: every committed mutation lands on disk before the
	// mutating request returns; rescheduling runs off the request path.
	service.OnChange(func() {
		if err := fileManager.SaveToFile(conf.Persistence.FilePath, conf.Persistence.BackupPath); err != nil {
			logger.Errorf(providers.TypeApp, "Persist error: %s", err)
		}
		scheduler.NotifyChange()
	})

	app := &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	notifier.Init()
	scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return nil, fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}

	scheduler.Stop()
	notifier.Stop()

	if err := fileManager.SaveToFile(conf.Persistence.FilePath, conf.Persistence.BackupPath); err != nil {
		return nil, err
	}
	fileManager.Close()
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}

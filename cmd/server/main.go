package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/costplan/backend/internal/config"
	"github.com/costplan/backend/internal/handler"
	"github.com/costplan/backend/internal/logging"
	"github.com/costplan/backend/internal/repository"
	"github.com/costplan/backend/internal/service"
	"github.com/costplan/backend/internal/storage"
	"github.com/costplan/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO", "json")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := repository.NewMemPlanRepository()
	defer repo.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := handler.NewMetrics(reg, func() int { return repo.Workspaces(ctx) })

	go repo.RunJanitor(ctx, cfg.JanitorInterval, cfg.WorkspaceTTL, func(n int) {
		slog.Info("idle workspaces pruned", "count", n)
		metrics.Pruned(n)
	})

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		logging.Fatal("failed to create export dir", "error", err, "dir", cfg.ExportDir)
	}
	store := storage.NewLocalStorage(cfg.ExportDir, cfg.ExportURLPrefix)

	recordService := service.NewRecordService(repo)
	changeService := service.NewChangeService(repo)
	implementationService := service.NewImplementationService(repo)
	assumptionService := service.NewAssumptionService(repo)
	projectionService := service.NewProjectionService(repo)
	workbookService := service.NewWorkbookService(repo, store)

	sessionSecretBytes := auth.SessionSecretBytes(cfg.SessionSecret)

	h := handler.New(repo, cfg.FrontendURL)
	sessionHandler := handler.NewSessionHandler(workbookService, sessionSecretBytes, cfg.SecureCookies(), cfg.SeedSample)
	recordHandler := handler.NewRecordHandler(recordService)
	changeHandler := handler.NewChangeHandler(changeService)
	implementationHandler := handler.NewImplementationHandler(implementationService)
	assumptionHandler := handler.NewAssumptionHandler(assumptionService)
	projectionHandler := handler.NewProjectionHandler(projectionService)
	workbookHandler := handler.NewWorkbookHandler(workbookService, cfg.MaxUploadBytes)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("POST /api/session", sessionHandler.Create)

	// Everything below works on the caller's workspace.
	wrapSession := func(next http.HandlerFunc) http.Handler {
		if cfg.AuthRequired {
			return auth.RequireSession(sessionSecretBytes)(next)
		}
		return auth.DevSession(sessionSecretBytes)(next)
	}
	mux.Handle("GET /api/session", wrapSession(sessionHandler.Get))
	mux.Handle("DELETE /api/session", wrapSession(sessionHandler.Delete))

	mux.Handle("GET /api/records", wrapSession(recordHandler.List))
	mux.Handle("POST /api/records", wrapSession(recordHandler.Create))
	mux.Handle("GET /api/records/{id}", wrapSession(recordHandler.Get))
	mux.Handle("PATCH /api/records/{id}", wrapSession(recordHandler.Update))
	mux.Handle("DELETE /api/records/{id}", wrapSession(recordHandler.Delete))

	mux.Handle("GET /api/changes", wrapSession(changeHandler.List))
	mux.Handle("POST /api/changes", wrapSession(changeHandler.Create))
	mux.Handle("DELETE /api/changes/{id}", wrapSession(changeHandler.Delete))

	mux.Handle("GET /api/implementation", wrapSession(implementationHandler.List))
	mux.Handle("PUT /api/implementation", wrapSession(implementationHandler.Set))
	mux.Handle("GET /api/implementation/summary", wrapSession(implementationHandler.Summary))

	mux.Handle("GET /api/assumptions", wrapSession(assumptionHandler.Get))
	mux.Handle("PUT /api/assumptions/{business}", wrapSession(assumptionHandler.UpdateRates))
	mux.Handle("PUT /api/businesses/{key}", wrapSession(assumptionHandler.RenameBusiness))
	mux.Handle("GET /api/functions", wrapSession(assumptionHandler.Functions))
	mux.Handle("POST /api/functions", wrapSession(assumptionHandler.AddFunction))
	mux.Handle("PUT /api/functions/{name}", wrapSession(assumptionHandler.RenameFunction))
	mux.Handle("DELETE /api/functions/{name}", wrapSession(assumptionHandler.RemoveFunction))

	mux.Handle("GET /api/projections/records/{id}", wrapSession(projectionHandler.Record))
	mux.Handle("GET /api/projections/dashboard", wrapSession(projectionHandler.Dashboard))

	mux.Handle("GET /api/workbook", wrapSession(workbookHandler.Export))
	mux.Handle("POST /api/workbook", wrapSession(workbookHandler.Import))
	mux.Handle("DELETE /api/workbook", wrapSession(workbookHandler.Reset))
	mux.Handle("POST /api/workbook/sample", wrapSession(workbookHandler.LoadSample))
	mux.Handle("GET /api/workbook/snapshots", wrapSession(workbookHandler.Snapshots))
	mux.Handle("POST /api/workbook/snapshots", wrapSession(workbookHandler.Snapshot))
	mux.Handle("DELETE /api/workbook/snapshots/{name}", wrapSession(workbookHandler.DeleteSnapshot))

	files := handler.SnapshotFiles(http.Dir(cfg.ExportDir), cfg.ExportURLPrefix)
	mux.Handle("GET "+cfg.ExportURLPrefix+"/", wrapSession(files.ServeHTTP))

	limiter := handler.NewRateLimiter(cfg.RateLimitPerMinute, cfg.TrustedProxies)
	go limiter.Run(ctx, 5*time.Minute)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.RequestLogger(handler.SecurityHeaders(h.CORS(limiter.Middleware(metrics.Instrument(mux))))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "auth_required", cfg.AuthRequired, "seed_sample", cfg.SeedSample)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

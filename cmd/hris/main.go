package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/limitless-hr/hris/internal/app"
	audithttp "github.com/limitless-hr/hris/internal/audit/http"
	"github.com/limitless-hr/hris/internal/auth"
	"github.com/limitless-hr/hris/internal/documents"
	documentshttp "github.com/limitless-hr/hris/internal/documents/http"
	"github.com/limitless-hr/hris/internal/employees"
	"github.com/limitless-hr/hris/internal/identity"
	jobmetrics "github.com/limitless-hr/hris/internal/jobs"
	"github.com/limitless-hr/hris/internal/observability"
	"github.com/limitless-hr/hris/internal/platform/storage"
	"github.com/limitless-hr/hris/internal/rbac"
	"github.com/limitless-hr/hris/internal/shared"
	"github.com/limitless-hr/hris/internal/view"
	"github.com/limitless-hr/hris/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("hris exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	var (
		kv        storage.KV
		notifier  documents.CompletionNotifier
		inspector *asynq.Inspector
	)
	if cfg.UsesRedis() {
		redisClient, err := storage.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		kv = storage.NewRedisKV(redisClient)

		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		jobClient := jobs.NewClient(redisOpts, logger)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		notifier = jobClient
		inspector = asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
	} else {
		logger.Warn("memory storage selected; sessions are lost on restart")
		kv = storage.NewMemoryKV()
		notifier = jobs.Inline{Job: jobs.NewDocumentCompletedJob(kv, logger, jobMetrics)}
	}

	sessionManager := shared.NewSessionManager(kv, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		return err
	}

	policy := rbac.DefaultPolicy()
	directory := identity.DefaultDirectory()
	guard := app.NewGuard(templates, metrics, logger)

	workflow := documents.NewWorkflow(documents.NewMemoryRepository(documents.SeedDocuments()...), notifier, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Directory:        directory,
		Policy:           policy,
		Guard:            guard,
		AuthHandler:      auth.NewHandler(logger, templates, csrfManager),
		EmployeesHandler: employees.NewHandler(logger, employees.SeedDataset(), directory, guard),
		DocumentsHandler: documentshttp.NewHandler(logger, workflow, templates, csrfManager, guard),
		AuditHandler:     audithttp.NewHandler(logger, guard),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("storage", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

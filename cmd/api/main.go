package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/assignment-service/internal/api/http"
	"github.com/spec-kit/assignment-service/internal/api/http/handlers"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/persistence"
	"github.com/spec-kit/assignment-service/internal/profile"
	"github.com/spec-kit/assignment-service/internal/remote"
	"github.com/spec-kit/assignment-service/internal/repository"
	"github.com/spec-kit/assignment-service/internal/service"
	"github.com/spec-kit/assignment-service/internal/worker"
	"github.com/spec-kit/assignment-service/internal/workflow"
)

type stores struct {
	employees   repository.EmployeeRepository
	assignments repository.AssignmentRepository
	evaluations repository.EvaluationRepository
	checks      map[string]handlers.Pinger
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backing, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open backing store", zap.String("driver", cfg.Backend.Driver), zap.Error(err))
	}
	defer backing.close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	if redis.Enabled() {
		backing.checks["redis"] = redis
	}

	metrics := observability.NewMetrics()
	validate := validator.New()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(dispatcher, notifications, redis, cfg.Redis.EventsChannel, logger)

	engine := workflow.NewEngine(workflow.EngineDependencies{
		AssignmentRepo: backing.assignments,
		EvaluationRepo: backing.evaluations,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Validator:      validate,
		Logger:         logger,
	})
	aggregator := profile.NewAggregator(profile.AggregatorDependencies{
		EmployeeRepo:   backing.employees,
		AssignmentRepo: backing.assignments,
		EvaluationRepo: backing.evaluations,
		Metrics:        metrics,
		Logger:         logger,
		Timeout:        cfg.Profile.FetchTimeout,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo: backing.assignments,
		EmployeeRepo:   backing.employees,
		EvaluationRepo: backing.evaluations,
		Dispatcher:     dispatcher,
		Validator:      validate,
		Logger:         logger,
	})
	employeeService := service.NewEmployeeService(backing.employees)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.Auth.Issuer)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, backing.checks),
		Employees:      handlers.NewEmployeesHandler(employeeService, aggregator, assignmentService.Now),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService, engine),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, backing.employees),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("assignment service started",
		zap.String("addr", cfg.App.Addr()),
		zap.String("store", cfg.Backend.Driver))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.Backend.Driver {
	case config.DriverRemote:
		client := remote.NewClient(cfg.Backend, logger)
		return &stores{
			employees:   client.Employees(),
			assignments: client.Assignments(),
			evaluations: client.Evaluations(),
			checks:      map[string]handlers.Pinger{"backend": client},
			close:       func() {},
		}, nil
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &stores{
			employees:   repository.NewEmployeeRepository(pg.Pool),
			assignments: repository.NewAssignmentRepository(pg.Pool),
			evaluations: repository.NewEvaluationRepository(pg.Pool),
			checks:      map[string]handlers.Pinger{"postgres": pg},
			close:       pg.Close,
		}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

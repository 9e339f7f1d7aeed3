package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/civic-report-service/internal/api/http"
	"github.com/spec-kit/civic-report-service/internal/api/http/handlers"
	"github.com/spec-kit/civic-report-service/internal/auth"
	"github.com/spec-kit/civic-report-service/internal/config"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/observability"
	"github.com/spec-kit/civic-report-service/internal/persistence"
	"github.com/spec-kit/civic-report-service/internal/repository"
	"github.com/spec-kit/civic-report-service/internal/service"
)

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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	statusLogRepo := repository.NewStatusLogRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	districtRepo := repository.NewDistrictRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	photoRepo := repository.NewPhotoRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()

	routingService := service.NewRoutingService(service.RoutingDependencies{
		TeamRepo:   teamRepo,
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		StatusLogRepo: statusLogRepo,
		CategoryRepo:  categoryRepo,
		DistrictRepo:  districtRepo,
		CommentRepo:   commentRepo,
		PhotoRepo:     photoRepo,
		Router:        routingService,
		Dispatcher:    dispatcher,
	})
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		EscalationRepo: escalationRepo,
		TicketRepo:     ticketRepo,
		TicketService:  ticketService,
		Dispatcher:     dispatcher,
	})
	feedbackService := service.NewFeedbackService(feedbackRepo, ticketRepo)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		TicketRepo:       ticketRepo,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		TicketRepo:   ticketRepo,
		FeedbackRepo: feedbackRepo,
		TeamRepo:     teamRepo,
		UserRepo:     userRepo,
		CategoryRepo: categoryRepo,
		DistrictRepo: districtRepo,
		Cache:        redis.Client,
		Config:       cfg.Analytics,
		Logger:       logger,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		UserRepo:     userRepo,
		TeamRepo:     teamRepo,
		CategoryRepo: categoryRepo,
		DistrictRepo: districtRepo,
		TicketRepo:   ticketRepo,
	})

	notificationService.RegisterHandlers()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewMiddleware(tokenManager, userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService, feedbackService, cfg.Analytics),
		Escalations:    handlers.NewEscalationsHandler(escalationService),
		Teams:          handlers.NewTeamsHandler(routingService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Directory:      handlers.NewDirectoryHandler(directoryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

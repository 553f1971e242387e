package main

import (
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/config"
	"github.com/tracknest/tracknest/internal/handlers"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/internal/services"
	"github.com/tracknest/tracknest/internal/utils"
	"github.com/tracknest/tracknest/pkg/logger"
)

// appServices holds the initialized services and handlers the router needs.
type appServices struct {
	cfg             *config.Config
	authzService    *authz.Service
	dispatcher      *services.Dispatcher
	webhookService  *services.WebhookService
	sprintService   *services.SprintService
	sprintScheduler *services.SprintScheduler
	taskQueue       services.TaskQueue
	worker          *services.Worker
	authHandler     *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database,
// permission engine, event pipeline, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	services.InitSystemLogger(db)

	// Permission engine: every service decision goes through this one
	// resolver, including the system admin override.
	authzService := authz.NewService(authz.NewGormStore(db))

	// Event pipeline: queue processing delivers webhooks and chat
	// notifications off the request path.
	notificationService := services.NewNotificationService(db)
	webhookService := services.NewWebhookService(db, authzService, notificationService)

	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(webhookService.ProcessEvent)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(webhookService.ProcessEvent)
			worker.Start()
		}
	}

	dispatcher := services.NewDispatcher(taskQueue, services.GetEventHub())

	holidayService := services.NewHolidayService()
	sprintService := services.NewSprintService(db, authzService, holidayService, dispatcher, cfg.Scheduler.CountryCode)

	sprintScheduler := services.NewSprintScheduler(db, sprintService, notificationService, holidayService, &cfg.Scheduler)
	sprintScheduler.Start()

	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:             cfg,
		authzService:    authzService,
		dispatcher:      dispatcher,
		webhookService:  webhookService,
		sprintService:   sprintService,
		sprintScheduler: sprintScheduler,
		taskQueue:       taskQueue,
		worker:          worker,
		authHandler:     authHandler,
	}
}

// shutdown gracefully stops background processing.
func (s *appServices) shutdown() {
	s.sprintScheduler.Stop()

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("Background services stopped")
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/boardflow/boardflow-api/internal/config"
	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/events"
	"github.com/boardflow/boardflow-api/internal/notify"
	"github.com/boardflow/boardflow-api/internal/platform/postgres"
	"github.com/boardflow/boardflow-api/internal/service"
	"github.com/boardflow/boardflow-api/internal/service/auth"
	"github.com/boardflow/boardflow-api/internal/store"
	"github.com/boardflow/boardflow-api/internal/task"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore     store.UserStore
	boardStore    store.BoardStore
	columnStore   store.ColumnStore
	cardStore     store.CardStore
	eventStore    store.EventStore
	deliveryStore store.DeliveryStore
	prefStore     store.PreferenceStore
	reminderStore store.ReminderStore
	taskStore     task.TaskStore

	// Services
	jwtService      auth.JWTService
	passwords       *auth.BcryptVerifier
	boardService    service.BoardService
	columnService   service.ColumnService
	cardService     service.CardService
	notifications   service.NotificationService
	reminderService service.ReminderService

	// Event system and background processing
	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized and the background task runner started.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.passwords = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.boardStore = postgres.NewPostgresBoardStore(db, logger)
	app.columnStore = postgres.NewPostgresColumnStore(db, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.eventStore = postgres.NewPostgresEventStore(db, logger)
	app.deliveryStore = postgres.NewPostgresDeliveryStore(db, logger)
	app.prefStore = postgres.NewPostgresPreferenceStore(db, logger)
	app.reminderStore = postgres.NewPostgresReminderStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	// The runner is created before the services so services can emit task
	// requests through the event system; its reifier is set once the
	// services exist, before Start.
	app.taskRunner = task.NewTaskRunner(app.taskStore, taskRunnerConfig(cfg), logger)
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	senders := buildSenders(cfg, logger)
	sendTimeout := time.Duration(cfg.Task.SendTimeoutSeconds) * time.Second

	app.notifications, err = service.NewNotificationService(
		app.eventStore,
		app.deliveryStore,
		app.prefStore,
		app.boardStore,
		app.userStore,
		senders,
		app.eventEmitter,
		sendTimeout,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}

	app.boardService, err = service.NewBoardService(
		app.boardStore,
		app.userStore,
		app.notifications,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}

	app.columnService, err = service.NewColumnService(app.columnStore, app.boardService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create column service: %w", err)
	}

	app.reminderService, err = service.NewReminderService(
		app.reminderStore,
		app.cardStore,
		app.userStore,
		app.eventStore,
		app.deliveryStore,
		app.prefStore,
		app.boardService,
		senders,
		app.eventEmitter,
		sendTimeout,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder service: %w", err)
	}

	app.cardService, err = service.NewCardService(
		db,
		app.cardStore,
		app.columnStore,
		app.boardService,
		app.notifications,
		app.reminderService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	// Task factory doubles as the reifier for crash recovery.
	taskFactory, err := task.NewTaskFactory(app.notifications, app.reminderService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task factory: %w", err)
	}
	app.taskRunner.SetReifier(taskFactory)

	handler := task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(handler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	// Re-request delivery for reminders scheduled before the last shutdown.
	// Stale requests are absorbed by the schedule token check.
	if err := app.reminderService.ResyncSchedules(ctx); err != nil {
		logger.Error("failed to resync reminder schedules", slog.String("error", err.Error()))
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}

	app.logger.Info("application shutdown completed")
}

// buildSenders registers one sender per configured channel. Unconfigured
// channels get no map entry, which is how the services know a channel is
// unavailable in this deployment.
func buildSenders(cfg *config.Config, logger *slog.Logger) map[domain.Channel]notify.Sender {
	senders := make(map[domain.Channel]notify.Sender)

	if cfg.SMTP.Configured() {
		senders[domain.ChannelEmail] = notify.NewEmailSender(cfg.SMTP, logger)
		logger.Info("email channel configured", slog.String("host", cfg.SMTP.Host))
	}

	if cfg.Telegram.Configured() {
		senders[domain.ChannelTelegram] = notify.NewTelegramSender(cfg.Telegram, logger)
		logger.Info("telegram channel configured")
	}

	if len(senders) == 0 {
		logger.Warn("no notification channels configured, deliveries will not be attempted")
	}

	return senders
}

// taskRunnerConfig maps the application config onto the runner's config,
// filling in defaults for unset values.
func taskRunnerConfig(cfg *config.Config) task.TaskRunnerConfig {
	runnerCfg := task.DefaultTaskRunnerConfig()

	if cfg.Task.WorkerCount > 0 {
		runnerCfg.WorkerCount = cfg.Task.WorkerCount
	}
	if cfg.Task.QueueSize > 0 {
		runnerCfg.QueueSize = cfg.Task.QueueSize
	}

	return runnerCfg
}

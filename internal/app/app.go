package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"solardryer/internal/auth"
	"solardryer/internal/config"
	"solardryer/internal/http/handlers"
	"solardryer/internal/http/middleware"
	"solardryer/internal/localstate"
	"solardryer/internal/models"
	"solardryer/internal/notify"
	"solardryer/internal/redisstore"
	"solardryer/internal/repository"
	"solardryer/internal/sampler"
	"solardryer/internal/session"
	"solardryer/internal/telemetry"
	"solardryer/internal/ws"
	libdb "solardryer/libs/db"
	libredis "solardryer/libs/redis"

	httpserver "solardryer/internal/http"
)

const (
	devicePingInterval = 30 * time.Second
	deviceWriteTimeout = 10 * time.Second
)

// App wires the dryer backend dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	manager     *ws.Manager
	subscriber  *telemetry.Subscriber
	watcher     *session.Watcher
	sampler     *sampler.Sampler
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	hub := notify.NewHub(logger)
	store := localstate.New(cfg.Storage.Dir, localstate.Keys{
		Active:  cfg.Storage.ActiveKey,
		Name:    cfg.Storage.NameKey,
		Counter: cfg.Storage.CounterKey,
	})

	sessionRepo := repository.NewSessionRepository(sqlDB)
	sampleRepo := repository.NewSampleRepository(sqlDB)

	latest := telemetry.NewLatest()
	subscriber := telemetry.NewSubscriber(redisClient, cfg.Redis.TelemetryChannel, latest, hub, logger)
	ingestor := telemetry.NewIngestor(redisClient, cfg.Redis.TelemetryChannel, logger)

	manager := ws.NewManager(devicePingInterval)
	wsServer := ws.NewServer(manager, ingestor, deviceWriteTimeout, logger)

	reconciler := session.NewReconciler(store, hub, logger)
	watcher := session.NewWatcher(redisClient, cfg.Redis.SessionChannel, sessionRepo, reconciler, logger)

	feed := redisstore.NewChangeFeed(redisClient, cfg.Redis.SessionChannel, logger)
	activeCache := redisstore.NewActiveStore(redisClient, cfg.ActiveSessionTTL())

	dispatcher := session.NewDispatcher(session.DispatcherDeps{
		Reconciler: reconciler,
		Store:      store,
		Counter:    store,
		Writer:     sessionRepo,
		Sender:     manager,
		Publisher:  feed,
		Cache:      activeCache,
		Notifier:   hub,
		Logger:     logger,
		DeviceID:   cfg.Device.ID,
	})

	sampleLogger := sampler.New(latest, sampleRepo, logger, cfg.SampleInterval())
	reconciler.OnChange(func(active *models.ActiveSession) {
		if active == nil {
			sampleLogger.SetActiveSession("")
			return
		}
		sampleLogger.SetActiveSession(active.ID)
	})

	routes := httpserver.Routes{
		Live:          handlers.NewLiveHandler(latest),
		ActiveSession: handlers.NewActiveSessionHandler(reconciler),
		SessionStart:  handlers.NewSessionStartHandler(dispatcher, reconciler),
		SessionStop:   handlers.NewSessionStopHandler(dispatcher),
		Sessions:      handlers.NewSessionsHandler(sessionRepo, store, logger),
		SessionDetail: handlers.NewSessionDetailHandler(sessionRepo, sampleRepo, logger),
		SessionExport: handlers.NewSessionExportHandler(sessionRepo, sampleRepo, logger),
		SessionDelete: handlers.NewSessionDeleteHandler(sessionRepo, feed, hub, logger),
		Notifications: handlers.NewNotificationsHandler(hub),
		DeviceWS:      wsServer.HandleWS,
		Health:        handlers.NewHealthHandler(),
	}

	var guard httpserver.Middleware
	if cfg.AuthEnabled() {
		tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
		authService := auth.NewService(cfg.Auth.Operator, cfg.Auth.PasswordHash, tokens)
		routes.Login = handlers.NewLoginHandler(authService)
		guard = middleware.RequireAuth(tokens)
	}

	router := httpserver.NewRouter(routes, guard)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		manager:     manager,
		subscriber:  subscriber,
		watcher:     watcher,
		sampler:     sampleLogger,
		logger:      logger,
	}, nil
}

// Run starts the background loops and the HTTP server, blocking until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.manager.Start(ctx)
	go a.subscriber.Run(ctx)
	go a.watcher.Run(ctx)

	err := a.server.Run(ctx)
	a.sampler.Close()
	return err
}

// Close releases resources.
func (a *App) Close() {
	a.sampler.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}

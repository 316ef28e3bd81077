package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"coastalstay/internal/app/bootstrap"
	"coastalstay/internal/app/middleware"
	"coastalstay/internal/app/notifications"
	appoutbox "coastalstay/internal/app/outbox"
	"coastalstay/internal/app/policies"
	authsvc "coastalstay/internal/app/services/auth"
	"coastalstay/internal/app/uow"
	domainauth "coastalstay/internal/domain/auth"
	domainproperties "coastalstay/internal/domain/properties"
	domainuser "coastalstay/internal/domain/user"
	"coastalstay/internal/infra/broker/kafka"
	"coastalstay/internal/infra/config"
	"coastalstay/internal/infra/db/mongo"
	"coastalstay/internal/infra/email"
	"coastalstay/internal/infra/fixtures"
	ginserver "coastalstay/internal/infra/http/gin"
	"coastalstay/internal/infra/inbox"
	"coastalstay/internal/infra/obs"
	"coastalstay/internal/infra/outbox"
	"coastalstay/internal/infra/security"
	redisstore "coastalstay/internal/infra/session/redis"
	"coastalstay/internal/infra/storage/memory"
	"coastalstay/internal/infra/storage/s3"
	"coastalstay/internal/infra/validation"
)

type application struct {
	server   *http.Server
	worker   *outbox.Worker
	consumer *kafka.Consumer
	topics   []string
	closers  []func() error
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

type storage struct {
	uow         uow.UoWFactory
	properties  domainproperties.Repository
	staff       domainuser.Repository
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}
	metrics := obs.NewMetrics()
	checks := map[string]func(context.Context) error{}

	sender, err := email.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	notifier := &notifications.Notifier{Sender: sender, Recipient: cfg.NotifyTo, Logger: logger}

	var store storage
	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() error { return client.Close(context.Background()) })
		checks["mongo"] = client.Ping
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		factory := mongo.NewFactory(client.DB)
		outboxStore, err := outbox.NewStore(ctx, client.DB)
		if err != nil {
			return nil, err
		}
		idem, err := mongo.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			return nil, err
		}
		store = storage{uow: factory, properties: factory.PropertiesRepo, staff: factory.StaffRepo, outbox: outboxStore, idempotency: idem}
		app.worker = &outbox.Worker{
			Store:       outboxStore,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			ClaimTTL:    time.Minute,
			Logger:      logger,
			Observer:    metrics,
		}
		if cfg.KafkaEnabled() {
			if err := wireKafka(ctx, cfg, logger, metrics, client, notifier, app); err != nil {
				return nil, err
			}
		} else {
			app.worker.Deliver = notifier
		}
	default:
		factory := memory.NewFactory()
		store = storage{
			uow:         factory,
			properties:  factory.PropertiesRepo,
			staff:       factory.StaffRepo,
			outbox:      memory.NewOutbox(logger, notifier),
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		}
	}

	var sessions domainauth.SessionStore = memory.NewSessionStore()
	if cfg.RedisURL != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		sessions = redisstore.NewSessionStore(client)
	}

	var photos policies.PhotoStorage
	if cfg.PhotosEnabled() {
		photoStore, err := s3.NewPhotoStore(s3.ParamsFromConfig(cfg), logger)
		if err != nil {
			return nil, err
		}
		checks["s3"] = photoStore.Ready
		photos = photoStore
	}

	buses := bootstrap.NewBuses(bootstrap.Deps{
		UoW:            store.uow,
		Outbox:         store.outbox,
		Idempotency:    store.idempotency,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Photos:         photos,
		Validator:      validation.New(),
		Observer:       metrics,
		Logger:         logger,
		Clock:          time.Now,
		PhoneRegion:    cfg.PhoneRegion,
		EventHeaders: func(ctx context.Context) map[string]string {
			return map[string]string{"request-id": obs.RequestIDFromContext(ctx)}
		},
	})
	logger.Info("handlers registered", "commands", buses.CommandKeys, "queries", buses.QueryKeys)

	auth := &authsvc.Service{
		Staff:      store.staff,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{Cost: cfg.BcryptCost},
		Tokens:     security.SessionTokens{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	if cfg.AdminEmail != "" {
		if _, err := auth.EnsureAccount(ctx, authsvc.AccountParams{
			Email:    cfg.AdminEmail,
			Name:     "Administrator",
			Password: cfg.AdminPassword,
			Role:     domainuser.RoleAdmin,
		}); err != nil {
			return nil, fmt.Errorf("bootstrap admin account: %w", err)
		}
	}

	if err := seedFixtures(ctx, cfg, store.properties, logger); err != nil {
		logger.Warn("property fixtures load failed", "error", err)
	}

	app.server = ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, metrics, obs.HealthHandlers{Checks: checks}, ginserver.Handlers{
		Properties:     ginserver.PropertyHandler{Queries: buses.Queries, Logger: logger},
		Inquiries:      ginserver.InquiryHandler{Commands: buses.Commands, Logger: logger},
		Auth:           ginserver.AuthHandler{Service: auth, Logger: logger},
		Admin:          ginserver.AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: auth, Logger: logger}.Handle,
	})
	return app, nil
}

func wireKafka(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *obs.Metrics, client *mongo.Client, notifier *notifications.Notifier, app *application) error {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, producer.Close)
	app.worker.Producer = producer

	inboxStore, err := inbox.NewStore(ctx, client.DB, cfg.KafkaConsumerGroup, inbox.DefaultRetention)
	if err != nil {
		return err
	}
	handler := &kafka.EventHandler{Inbox: inboxStore, Target: notifier, Logger: logger, Observer: metrics}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, handler, logger)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, consumer.Close)
	app.consumer = consumer
	app.topics = []string{
		outbox.TopicFor(cfg.KafkaTopicPrefix, "inquiry"),
		outbox.TopicFor(cfg.KafkaTopicPrefix, "property"),
	}
	return nil
}

func seedFixtures(ctx context.Context, cfg config.Config, repo domainproperties.Repository, logger *slog.Logger) error {
	path := strings.TrimSpace(cfg.Fixtures)
	if path == "" {
		if _, err := os.Stat(fixtures.DefaultPath); err != nil {
			return nil
		}
		path = fixtures.DefaultPath
	}
	items, err := fixtures.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return err
	}
	n, err := fixtures.Seed(ctx, repo, items, logger, time.Now())
	if err != nil {
		return err
	}
	logger.Info("property fixtures imported", "path", path, "count", n, "total", len(items))
	return nil
}

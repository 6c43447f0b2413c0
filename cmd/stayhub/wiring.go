package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"stayhub/internal/app/commands"
	availabilityapp "stayhub/internal/app/handlers/availability"
	bookingapp "stayhub/internal/app/handlers/booking"
	listingapp "stayhub/internal/app/handlers/listings"
	userapp "stayhub/internal/app/handlers/users"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/services/auth"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/availability"
	"stayhub/internal/infra/broker/kafka"
	"stayhub/internal/infra/broker/rabbitmq"
	"stayhub/internal/infra/config"
	mongodb "stayhub/internal/infra/db/mongo"
	"stayhub/internal/infra/geocode"
	ginserver "stayhub/internal/infra/http/gin"
	redislock "stayhub/internal/infra/lock/redis"
	"stayhub/internal/infra/obs"
	infraoutbox "stayhub/internal/infra/outbox"
	"stayhub/internal/infra/payments/breaker"
	"stayhub/internal/infra/payments/omisepay"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
	"stayhub/internal/infra/storage/s3"
	"stayhub/internal/infra/validation"
)

type application struct {
	handlers ginserver.Handlers
	checks   map[string]obs.Check
	worker   *infraoutbox.Worker
	factory  uow.UoWFactory
	geocoder policies.Geocoder
	hasher   security.BcryptHasher
	tokens   security.RandomTokenGenerator
	closers  []func(context.Context) error
}

type storage struct {
	factory     uow.UoWFactory
	source      infraoutbox.Source
	idempotency middleware.IdempotencyStore
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		checks:   map[string]obs.Check{},
		geocoder: geocode.Static{},
		hasher:   security.BcryptHasher{},
		tokens:   security.RandomTokenGenerator{},
	}

	store, err := app.buildStorage(ctx, cfg)
	if err != nil {
		app.close(logger)
		return nil, err
	}
	app.factory = store.factory

	locker, err := app.buildLocker(cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}
	payments, err := buildPayments(cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}
	producer, err := app.buildProducer(cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}
	images, err := app.buildImageHost(cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	app.worker = &infraoutbox.Worker{
		Store:       store.source,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}

	encoder := outbox.JSONEventEncoder{IDGenerator: uuid.NewString}
	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	bookingapp.Register(commandBus, &bookingapp.CreateBookingHandler{
		UoW:      store.factory,
		Payments: payments,
		Locker:   locker,
		Encoder:  encoder,
		Window:   availability.Window{CheckInDays: cfg.BookingWindowDays, CheckOutDays: cfg.CheckoutWindowDays},
		Currency: cfg.Currency,
		Logger:   logger,
	})
	availabilityapp.Register(queryBus, &availabilityapp.CheckAvailabilityHandler{
		UoW:    store.factory,
		Window: availability.Window{CheckInDays: cfg.BookingWindowDays, CheckOutDays: cfg.CheckoutWindowDays},
	})
	listingapp.Register(commandBus, queryBus, listingapp.Handlers{
		Get:      &listingapp.GetListingHandler{UoW: store.factory},
		Bookings: &listingapp.ListingBookingsHandler{UoW: store.factory},
		Search:   &listingapp.SearchListingsHandler{UoW: store.factory, Geocoder: app.geocoder},
		Host: &listingapp.HostListingHandler{
			Geocoder: app.geocoder,
			Images:   images,
			Encoder:  encoder,
			Logger:   logger,
		},
	})
	userapp.Register(commandBus, queryBus, store.factory, &userapp.WalletHandler{})

	validator := validation.New()
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		middleware.Idempotency(store.idempotency, nil),
		middleware.Authorization(auth.RequireViewer{}),
		middleware.Validation(validator),
		middleware.OutboxFlush(app.worker, logger),
		middleware.Transaction(store.factory, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(validator),
	)

	authService := &auth.Service{UoW: store.factory, Tokens: app.hasher, Logger: logger}
	app.handlers = ginserver.Handlers{
		Booking:       ginserver.BookingHandler{Commands: commandBusWithMiddleware},
		Listing:       ginserver.ListingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		User:          ginserver.UserHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		ViewerResolve: ginserver.ViewerMiddleware{Resolver: authService, Logger: logger}.Handle,
	}
	return app, nil
}

func (a *application) buildStorage(ctx context.Context, cfg config.Config) (storage, error) {
	if cfg.Storage != config.StorageMongo {
		mem := memory.NewStore()
		return storage{factory: mem, source: mem, idempotency: memory.NewIdempotencyStore()}, nil
	}
	client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, err
	}
	a.closers = append(a.closers, client.Close)
	a.checks["mongo"] = client.Ping
	if err := mongodb.EnsureIndexes(ctx, client.DB); err != nil {
		return storage{}, err
	}
	events, err := infraoutbox.NewMongoStore(ctx, client.DB)
	if err != nil {
		return storage{}, err
	}
	idem, err := mongodb.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return storage{}, err
	}
	return storage{factory: mongodb.NewFactory(client.DB, events), source: events, idempotency: idem}, nil
}

func (a *application) buildLocker(cfg config.Config, logger *slog.Logger) (policies.ListingLocker, error) {
	if cfg.Lock != config.LockRedis {
		return memory.NewLocker(), nil
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return redislock.NewLocker(client, cfg.LockTTL, logger), nil
}

func buildPayments(cfg config.Config, logger *slog.Logger) (policies.PaymentGateway, error) {
	var inner policies.PaymentGateway
	switch cfg.Payments {
	case config.PaymentsOmise:
		client, err := omisepay.NewClient(cfg.OmisePublicKey, cfg.OmiseSecretKey)
		if err != nil {
			return nil, err
		}
		inner = omisepay.NewGateway(client)
	default:
		inner = memory.NewPaymentGateway()
	}
	return breaker.Wrap(inner, breaker.Settings{Name: "payments-" + cfg.Payments, Timeout: cfg.PaymentsTimeout}, logger), nil
}

func (a *application) buildProducer(cfg config.Config, logger *slog.Logger) (infraoutbox.Producer, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig("stayhub-outbox"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		return producer, nil
	case config.BrokerRabbitMQ:
		publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return publisher.Close() })
		a.checks["rabbitmq"] = publisher.Ready
		return publisher, nil
	default:
		return infraoutbox.LogProducer{Logger: logger}, nil
	}
}

func (a *application) buildImageHost(cfg config.Config, logger *slog.Logger) (policies.ImageHost, error) {
	if cfg.S3Endpoint == "" {
		return memory.NewImageHost(), nil
	}
	host, err := s3.NewImageHost(s3.Options{
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicEndpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		UseSSL:        cfg.S3UseSSL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("image host: %w", err)
	}
	a.checks["s3"] = host.Ready
	return host, nil
}

// close releases external clients in reverse order of creation.
func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown close failed", "error", err)
		}
	}
	a.closers = nil
}

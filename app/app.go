package app

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"rentals/audit"
	"rentals/auth"
	"rentals/booking"
	"rentals/config"
	dbLib "rentals/db"
	"rentals/db/events"
	"rentals/db/rentals"
	"rentals/db/users"
	"rentals/db/vehicles"
	"rentals/http"
	"rentals/notification"
	"rentals/pubsub"
)

func init() {
	log.Init(logrus.InfoLevel)
	decimal.MarshalJSONWithoutQuotes = true
}

type App struct {
	db              *sqlx.DB
	transport       pubsub.Transport
	watermillRouter *message.Router
	emitter         *audit.Emitter
	hub             *notification.Hub
	httpServer      *http.Server
	traceProvider   *tracesdk.TracerProvider
}

func New(
	cfg config.Config,
	db *sqlx.DB,
	redisClient *redis.Client,
	traceProvider *tracesdk.TracerProvider,
) (App, error) {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	transport, err := pubsub.NewTransport(redisClient, cfg.KafkaAddr, watermillLogger)
	if err != nil {
		return App{}, fmt.Errorf("failed to create audit transport: %w", err)
	}

	eventBus, err := pubsub.NewEventBus(transport.Publisher)
	if err != nil {
		return App{}, fmt.Errorf("failed to create event bus: %w", err)
	}

	vehiclesRepo := vehicles.NewPostgresRepository(db)
	rentalsRepo := rentals.NewPostgresRepository(db)
	usersRepo := users.NewPostgresRepository(db)
	dataLake := events.NewDataLake(db)

	emitter := audit.NewEmitter(eventBus, cfg.Audit.Buffer)
	hub := notification.NewHub(cfg.Notify.SendTimeout, cfg.Notify.MaxParallel)
	engine := booking.NewEngine(vehiclesRepo, rentalsRepo, emitter, hub)

	watermillRouter, err := pubsub.NewWatermillRouter(transport.Subscriber, dataLake, watermillLogger)
	if err != nil {
		return App{}, fmt.Errorf("failed to create watermill router: %w", err)
	}

	httpServer := http.NewServer(
		cfg.HTTPAddr,
		engine,
		vehiclesRepo,
		rentalsRepo,
		usersRepo,
		auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		emitter,
		hub,
	)

	return App{
		db:              db,
		transport:       transport,
		watermillRouter: watermillRouter,
		emitter:         emitter,
		hub:             hub,
		httpServer:      httpServer,
		traceProvider:   traceProvider,
	}, nil
}

func (a App) Run(ctx context.Context) error {
	if err := dbLib.InitializeDatabaseSchema(a.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	log.FromContext(ctx).WithField("transport", a.transport.Name).Info("Audit log transport selected")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return a.traceProvider.Shutdown(context.Background())
	})

	g.Go(func() error {
		return a.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		err := a.emitter.Run(ctx)
		if closeErr := a.transport.Publisher.Close(); closeErr != nil {
			log.FromContext(ctx).WithError(closeErr).Error("failed to close audit publisher")
		}
		return err
	})

	g.Go(func() error {
		// we don't want to start HTTP server before Watermill router (so app won't be healthy before it's ready)
		<-a.watermillRouter.Running()

		return a.httpServer.Run(ctx)
	})

	return g.Wait()
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/redis/go-redis/v9"

	"rentals/app"
	"rentals/config"
	"rentals/db"
	"rentals/tracing"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.FromContext(ctx)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.WithError(err).Fatal("Could not load config")
	}

	dbConn, err := db.Connect(cfg.PostgresURL)
	if err != nil {
		logger.WithError(err).Fatal("Could not connect to postgres")
	}
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer redisClient.Close()

	traceProvider, err := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint)
	if err != nil {
		logger.WithError(err).Fatal("Could not configure tracing")
	}

	a, err := app.New(cfg, dbConn, redisClient, traceProvider)
	if err != nil {
		logger.WithError(err).Fatal("Could not create app")
	}

	if err := a.Run(ctx); err != nil {
		logger.WithError(err).Fatal("App stopped with error")
	}
}

package tests

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	"rentals/db"
)

var (
	postgresURL string
	redisURL    string
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()
	logger := log.FromContext(ctx)

	stopPostgres, err := db.EnsurePostgres(ctx)
	if err != nil {
		logger.WithError(err).Error("Could not prepare postgres")
		return 1
	}
	defer stopPostgres()

	stopRedis, err := ensureRedis(ctx)
	if err != nil {
		logger.WithError(err).Error("Could not prepare redis")
		return 1
	}
	defer stopRedis()

	postgresURL = os.Getenv("POSTGRES_URL")
	redisURL = os.Getenv("REDIS_ADDR")

	return m.Run()
}

// ensureRedis mirrors db.EnsurePostgres for REDIS_ADDR.
func ensureRedis(ctx context.Context) (stop func(), err error) {
	if os.Getenv("REDIS_ADDR") != "" {
		return func() {}, nil
	}

	container, err := redis.RunContainer(ctx,
		testcontainers.WithImage("docker.io/redis:7"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not start redis container: %w", err)
	}

	stop = db.TerminateFunc(ctx, container)

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		stop()
		return nil, fmt.Errorf("could not get redis connection string: %w", err)
	}

	if err := os.Setenv("REDIS_ADDR", strings.TrimPrefix(uri, "redis://")); err != nil {
		stop()
		return nil, err
	}

	return stop, nil
}

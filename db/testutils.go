package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	db        *sqlx.DB
	getDbOnce sync.Once
)

// GetDb returns a connection to POSTGRES_URL with the schema initialized.
// The connection is shared by all tests of the package.
func GetDb(t *testing.T) *sqlx.DB {
	getDbOnce.Do(func() {
		var err error
		db, err = sqlx.Open("postgres", os.Getenv("POSTGRES_URL"))
		require.NoError(t, err)

		require.NoError(t, InitializeDatabaseSchema(db))
	})
	return db
}

// RunWithPostgres runs the tests of a package with POSTGRES_URL pointing at a
// usable database and returns their exit code.
func RunWithPostgres(m *testing.M) int {
	ctx := context.Background()

	stop, err := EnsurePostgres(ctx)
	if err != nil {
		log.FromContext(ctx).WithError(err).Error("Could not prepare postgres for tests")
		return 1
	}
	defer stop()

	return m.Run()
}

// EnsurePostgres leaves an already set POSTGRES_URL alone. Otherwise it starts
// a throwaway container, points POSTGRES_URL at it and returns a func removing it.
func EnsurePostgres(ctx context.Context) (stop func(), err error) {
	if os.Getenv("POSTGRES_URL") != "" {
		return func() {}, nil
	}

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		postgres.WithDatabase("rentals"),
		postgres.WithUsername("rentals"),
		postgres.WithPassword("rentals"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("could not start postgres container: %w", err)
	}

	stop = TerminateFunc(ctx, container)

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		stop()
		return nil, fmt.Errorf("could not get postgres connection string: %w", err)
	}

	if err := os.Setenv("POSTGRES_URL", url); err != nil {
		stop()
		return nil, err
	}

	return stop, nil
}

// TerminateFunc returns a func removing the container, logging failures.
func TerminateFunc(ctx context.Context, container testcontainers.Container) func() {
	return func() {
		if err := container.Terminate(ctx); err != nil {
			log.FromContext(ctx).WithError(err).Warn("Could not terminate test container")
		}
	}
}

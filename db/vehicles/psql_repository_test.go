package vehicles

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentals/db"
	"rentals/entity"
)

func TestMain(m *testing.M) {
	os.Exit(db.RunWithPostgres(m))
}

func newVehicle(status entity.AvailabilityStatus) entity.Vehicle {
	return entity.Vehicle{
		VehicleID:          uuid.NewString(),
		Make:               "Toyota",
		Model:              "Corolla " + uuid.NewString(),
		Type:               "sedan",
		RentalPricePerDay:  decimal.RequireFromString("50.00"),
		AvailabilityStatus: status,
		Location:           "Berlin",
	}
}

func getVehicle(ctx context.Context, repo *PostgresRepository, vehicleID string) (entity.Vehicle, error) {
	var vehicle entity.Vehicle
	err := repo.db.GetContext(ctx, &vehicle, `SELECT `+vehicleColumns+` FROM vehicles WHERE vehicle_id = $1`, vehicleID)
	return vehicle, err
}

func TestPostgresRepository_FindAndReserve(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(db.GetDb(t))

	vehicle := newVehicle(entity.VehicleAvailable)
	require.NoError(t, repo.Insert(ctx, vehicle))

	reserved, err := repo.FindAndReserve(ctx, vehicle.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, entity.VehicleRented, reserved.AvailabilityStatus)
	assert.True(t, vehicle.RentalPricePerDay.Equal(reserved.RentalPricePerDay))
	assert.Equal(t, vehicle.Make, reserved.Make)

	_, err = repo.FindAndReserve(ctx, vehicle.VehicleID)
	assert.ErrorIs(t, err, entity.ErrVehicleUnavailable)

	_, err = repo.FindAndReserve(ctx, "does-not-exist")
	assert.ErrorIs(t, err, entity.ErrVehicleUnavailable)
}

func TestPostgresRepository_FindAndReserve_concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(db.GetDb(t))

	vehicle := newVehicle(entity.VehicleAvailable)
	require.NoError(t, repo.Insert(ctx, vehicle))

	const attempts = 20
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.FindAndReserve(ctx, vehicle.VehicleID)
		}(i)
	}
	wg.Wait()

	succeeded := lo.CountBy(errs, func(err error) bool { return err == nil })
	unavailable := lo.CountBy(errs, func(err error) bool { return errors.Is(err, entity.ErrVehicleUnavailable) })

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, unavailable)
}

func TestPostgresRepository_Release(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(db.GetDb(t))

	vehicle := newVehicle(entity.VehicleRented)
	require.NoError(t, repo.Insert(ctx, vehicle))

	require.NoError(t, repo.Release(ctx, vehicle.VehicleID))

	stored, err := getVehicle(ctx, repo, vehicle.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, entity.VehicleAvailable, stored.AvailabilityStatus)

	err = repo.Release(ctx, vehicle.VehicleID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPostgresRepository_Insert_duplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(db.GetDb(t))

	vehicle := newVehicle(entity.VehicleAvailable)
	require.NoError(t, repo.Insert(ctx, vehicle))

	exists, err := repo.Exists(ctx, vehicle.Make, vehicle.Model, vehicle.Type, vehicle.Location)
	require.NoError(t, err)
	assert.True(t, exists)

	duplicate := vehicle
	duplicate.VehicleID = uuid.NewString()
	err = repo.Insert(ctx, duplicate)
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestPostgresRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(db.GetDb(t))

	location := "Lisbon-" + uuid.NewString()

	cheap := newVehicle(entity.VehicleAvailable)
	cheap.Location = location
	cheap.Type = "compact"
	cheap.RentalPricePerDay = decimal.RequireFromString("30")

	expensive := newVehicle(entity.VehicleAvailable)
	expensive.Location = location
	expensive.Type = "suv"
	expensive.RentalPricePerDay = decimal.RequireFromString("120.5")

	rented := newVehicle(entity.VehicleRented)
	rented.Location = location
	rented.Type = "compact"

	for _, v := range []entity.Vehicle{cheap, expensive, rented} {
		require.NoError(t, repo.Insert(ctx, v))
	}

	all, err := repo.Find(ctx, entity.VehicleFilter{Location: location})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	maxPrice := decimal.RequireFromString("100")
	available, err := repo.Find(ctx, entity.VehicleFilter{
		Location: location,
		MaxPrice: &maxPrice,
		Status:   entity.VehicleAvailable,
	})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, cheap.VehicleID, available[0].VehicleID)

	compacts, err := repo.Find(ctx, entity.VehicleFilter{Location: location, Type: "compact"})
	require.NoError(t, err)
	assert.ElementsMatch(
		t,
		[]string{cheap.VehicleID, rented.VehicleID},
		lo.Map(compacts, func(v entity.Vehicle, _ int) string { return v.VehicleID }),
	)
}

package vehicles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"rentals/db"
	"rentals/entity"
)

const vehicleColumns = `vehicle_id, make, model, type, rental_price_per_day, availability_status, location`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	if db == nil {
		panic("db is nil")
	}

	return &PostgresRepository{db: db}
}

// FindAndReserve flips an AVAILABLE vehicle to RENTED in a single conditional
// update and returns the vehicle as it was reserved. Concurrent callers racing
// for the same vehicle are serialized by the row lock: only one of them matches
// the status predicate, the rest get ErrVehicleUnavailable.
func (r *PostgresRepository) FindAndReserve(ctx context.Context, vehicleID string) (entity.Vehicle, error) {
	var vehicle entity.Vehicle
	err := r.db.GetContext(ctx, &vehicle, `
		UPDATE vehicles
		SET availability_status = $2
		WHERE vehicle_id = $1 AND availability_status = $3
		RETURNING `+vehicleColumns,
		vehicleID, entity.VehicleRented, entity.VehicleAvailable,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Vehicle{}, entity.ErrVehicleUnavailable
	}
	if err != nil {
		return entity.Vehicle{}, fmt.Errorf("could not reserve vehicle %s: %w", vehicleID, err)
	}

	return vehicle, nil
}

// Release is the reverse transition, RENTED -> AVAILABLE.
func (r *PostgresRepository) Release(ctx context.Context, vehicleID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vehicles
		SET availability_status = $2
		WHERE vehicle_id = $1 AND availability_status = $3
	`, vehicleID, entity.VehicleAvailable, entity.VehicleRented)
	if err != nil {
		return fmt.Errorf("could not release vehicle %s: %w", vehicleID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("vehicle %s is not rented: %w", vehicleID, entity.ErrNotFound)
	}

	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, vehicle entity.Vehicle) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO vehicles (vehicle_id, make, model, type, rental_price_per_day, availability_status, location)
		VALUES (:vehicle_id, :make, :model, :type, :rental_price_per_day, :availability_status, :location)
	`, vehicle)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("vehicle %s %s already exists in %s: %w", vehicle.Make, vehicle.Model, vehicle.Location, entity.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("could not insert vehicle: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, vehicleMake, model, vehicleType, location string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM vehicles
			WHERE make = $1 AND model = $2 AND type = $3 AND location = $4
		)
	`, vehicleMake, model, vehicleType, location)
	if err != nil {
		return false, fmt.Errorf("could not check vehicle existence: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) Find(ctx context.Context, filter entity.VehicleFilter) ([]entity.Vehicle, error) {
	query, args, err := buildFindQuery(filter)
	if err != nil {
		return nil, err
	}

	vehicles := []entity.Vehicle{}
	if err := r.db.SelectContext(ctx, &vehicles, query, args...); err != nil {
		return nil, fmt.Errorf("could not find vehicles: %w", err)
	}

	return vehicles, nil
}

func buildFindQuery(filter entity.VehicleFilter) (string, []any, error) {
	where := goqu.Ex{}
	if filter.Type != "" {
		where["type"] = filter.Type
	}
	if filter.Location != "" {
		where["location"] = filter.Location
	}
	if filter.Status != "" {
		where["availability_status"] = string(filter.Status)
	}

	stmt := goqu.Dialect("postgres").
		From("vehicles").
		Select("vehicle_id", "make", "model", "type", "rental_price_per_day", "availability_status", "location").
		Order(goqu.I("make").Asc(), goqu.I("model").Asc(), goqu.I("vehicle_id").Asc()).
		Prepared(true)

	if len(where) > 0 {
		stmt = stmt.Where(where)
	}
	if filter.MaxPrice != nil {
		stmt = stmt.Where(goqu.C("rental_price_per_day").Lte(filter.MaxPrice.String()))
	}

	query, args, err := stmt.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("could not build vehicles query: %w", err)
	}

	return query, args, nil
}

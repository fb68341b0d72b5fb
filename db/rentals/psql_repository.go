package rentals

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"rentals/db"
	"rentals/entity"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	if db == nil {
		panic("db is nil")
	}

	return &PostgresRepository{db: db}
}

// Append writes a ledger entry. Entries are never updated, so a repeated
// rental id is reported as a conflict rather than silently overwritten.
func (r *PostgresRepository) Append(ctx context.Context, rental entity.Rental) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO rentals (rental_id, vehicle_id, customer_id, rental_start_date, rental_end_date, total_cost)
		VALUES (:rental_id, :vehicle_id, :customer_id, :rental_start_date, :rental_end_date, :total_cost)
	`, rental)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("rental %s: %w", rental.RentalID, entity.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("could not append rental %s: %w", rental.RentalID, err)
	}

	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, filter entity.RentalFilter) ([]entity.Rental, error) {
	where := goqu.Ex{}
	if filter.CustomerID != "" {
		where["customer_id"] = filter.CustomerID
	}
	if filter.VehicleID != "" {
		where["vehicle_id"] = filter.VehicleID
	}

	stmt := goqu.Dialect("postgres").
		From("rentals").
		Select("rental_id", "vehicle_id", "customer_id", "rental_start_date", "rental_end_date", "total_cost", "created_at").
		Order(goqu.I("created_at").Asc(), goqu.I("rental_id").Asc()).
		Prepared(true)
	if len(where) > 0 {
		stmt = stmt.Where(where)
	}

	query, args, err := stmt.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("could not build rentals query: %w", err)
	}

	rentals := []entity.Rental{}
	if err := r.db.SelectContext(ctx, &rentals, query, args...); err != nil {
		return nil, fmt.Errorf("could not find rentals: %w", err)
	}

	return rentals, nil
}

package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS vehicles (
	vehicle_id TEXT PRIMARY KEY,
	make VARCHAR(255) NOT NULL,
	model VARCHAR(255) NOT NULL,
	type VARCHAR(255) NOT NULL,
	rental_price_per_day NUMERIC NOT NULL CHECK (rental_price_per_day >= 0),
	availability_status VARCHAR(16) NOT NULL,
	location VARCHAR(255) NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS vehicles_identity_idx
	ON vehicles (make, model, type, location);

CREATE TABLE IF NOT EXISTS rentals (
	rental_id TEXT PRIMARY KEY,
	vehicle_id TEXT NOT NULL,
	customer_id TEXT NOT NULL,
	rental_start_date DATE NOT NULL,
	rental_end_date DATE NOT NULL,
	total_cost NUMERIC NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS rentals_customer_idx ON rentals (customer_id);

CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role VARCHAR(16) NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	event_id TEXT PRIMARY KEY,
	published_at TIMESTAMPTZ NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	event_payload JSONB NOT NULL
);
`

func InitializeDatabaseSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not initialize database schema: %w", err)
	}
	return nil
}

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Store(ctx context.Context, user entity.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (user_id, name, email, password_hash, role)
		VALUES (:user_id, :name, :email, :password_hash, :role)
	`, user)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("user %s already exists: %w", user.Email, entity.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("could not store user: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	var user entity.User
	err := r.db.GetContext(ctx, &user, `
		SELECT user_id, name, email, password_hash, role
		FROM users
		WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, fmt.Errorf("user %s: %w", email, entity.ErrNotFound)
	}
	if err != nil {
		return entity.User{}, fmt.Errorf("could not get user: %w", err)
	}

	return user, nil
}

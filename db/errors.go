package db

import (
	"errors"

	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	var postgresError *pq.Error
	return errors.As(err, &postgresError) && postgresError.Code.Name() == "unique_violation"
}

package repository

import (
	"errors"
	"fmt"

	"layledger/service"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// wrapError annotates a database error. Lock timeouts, deadlocks, serialization
// failures and unique violations become service conflict errors.
func wrapError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if isConflict(err) {
		return service.NewConflictError(msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected,
		pgerrcode.LockNotAvailable,
		pgerrcode.UniqueViolation:
		return true
	}
	return false
}

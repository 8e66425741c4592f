package repository

import (
	"errors"

	"layledger/service"
)

func isConflictError(err error) bool {
	return errors.Is(err, service.ErrConflict)
}

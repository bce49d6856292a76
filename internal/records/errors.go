package records

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"

	"wpp/internal/services"
)

// ErrPersistence marks any store-level failure inside the atomic unit. The
// transaction has been rolled back when it is returned.
var ErrPersistence = errors.New("persistence failure")

const (
	pgIntegrityClass = "23"
	// sqliteConstraint is the primary result code SQLITE_CONSTRAINT.
	sqliteConstraint = 19
)

// isConstraintViolation reports integrity-constraint failures from either
// backend.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code.Class() == pgIntegrityClass {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && strings.HasPrefix(pgerr.Code, pgIntegrityClass) {
		return true
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) && serr.Code()&0xff == sqliteConstraint {
		return true
	}
	return false
}

// persistenceError wraps err with ErrPersistence and a coarse cause.
func persistenceError(operation string, err error) error {
	cause := "store error"
	switch {
	case isConstraintViolation(err):
		cause = "constraint violation"
	case errors.Is(err, context.DeadlineExceeded):
		cause = "statement timeout"
	}
	return services.Wrap(ErrPersistence, "records", operation, cause, err)
}

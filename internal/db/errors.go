package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for database operations. Check with errors.Is.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvariantViolation indicates a state that should be impossible,
	// such as two document records for one tenant+product. Callers must
	// fail loudly, never pick one silently.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrTransactionConflict indicates a SurrealDB transaction conflict
	// from concurrent writes to the same records. Callers may retry.
	ErrTransactionConflict = errors.New("transaction conflict")
)

// wrapQueryError inspects a SurrealDB error and wraps it with the matching
// sentinel. Returns the original error when it matches no known pattern.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		if strings.Contains(queryErr.Message, "Transaction conflict") {
			return fmt.Errorf("%w: %s", ErrTransactionConflict, queryErr.Message)
		}
		// Unique index rejections ("already contains") mean a writer tried
		// to create a second row for a tenant that must have exactly one.
		if strings.Contains(queryErr.Message, "already contains") {
			return fmt.Errorf("%w: %s", ErrInvariantViolation, queryErr.Message)
		}
	}

	return err
}

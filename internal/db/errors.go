package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound  = errors.New("db: key not found")
	ErrInvalidQuery = errors.New("db: invalid query")
)

// Op constants name the backend command for error context.
const (
	OpPing              = "ping"
	OpAggregate         = "aggregate"
	OpFind              = "find"
	OpDecode            = "decode"
	OpListSearchIndexes = "listSearchIndexes"
	OpCreateSearchIndex = "createSearchIndexes"
	OpGet               = "GET"
	OpSet               = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

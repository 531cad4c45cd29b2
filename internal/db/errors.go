package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrUnavailable matches any *Error raised because the store could not be reached.
	ErrUnavailable = errors.New("db: store unavailable")
)

// Op constants map to Valkey/Redis command names for error context.
const (
	OpDel     = "DEL"
	OpHDel    = "HDEL"
	OpHGetAll = "HGETALL"
	OpHSet    = "HSET"
	OpMulti   = "MULTI"
	OpExists  = "EXISTS"
	OpScan    = "SCAN"
	OpGet     = "GET"
	OpSet     = "SET"
	OpIncrBy  = "INCRBY"
	OpExpire  = "EXPIRE"
)

// Error wraps an underlying error with the operation name for diagnostics.
// Unavailable marks connection-level failures (dial, timeout, closed client).
type Error struct {
	Op          string
	Err         error
	Unavailable bool
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnavailable) match connection failures.
func (e *Error) Is(target error) bool {
	return e.Unavailable && target == ErrUnavailable
}

// Package errors holds the sentinel errors shared by the storage core and
// thin wrappers around github.com/pkg/errors so call sites need a single import.
package errors

import (
	goerrors "errors"

	pkgerrors "github.com/pkg/errors"
)

// Error is a constant error type. Values can be declared as const and compared
// with errors.Is after wrapping.
type Error string

func (e Error) Error() string {
	return string(e)
}

// invalid argument
const (
	ErrInvalidPermission = Error("permission does not exist")
	ErrPageOutOfRange    = Error("page number is beyond one past the end of the file")
	ErrSchemaMismatch    = Error("tuple does not match the table schema")
	ErrUnknownTable      = Error("table is not registered in the catalog")
	ErrPagesCached       = Error("page size can not be changed while pages are cached")
	ErrTableExists       = Error("table is already registered in the catalog")
)

// transaction aborted / cancelled
const (
	ErrTxnAborted  = Error("transaction aborted")
	ErrInterrupted = Error("lock wait interrupted")
)

// operational failure
const (
	ErrNoCleanPage         = Error("no clean page to evict")
	ErrEmptyCache          = Error("no pages to evict")
	ErrTupleAlreadyDeleted = Error("tuple slot has already been deleted")
	ErrTupleNotLocated     = Error("tuple carries no location on this table")
	ErrPageFull            = Error("no free slot on page")
	ErrNoSuchElement       = Error("there are no more tuples")
	ErrIteratorNotOpen     = Error("iterator is not open")
	ErrLockNotFound        = Error("no lock state for page")
	ErrManagerStopped      = Error("request manager is stopped")
)

func New(message string) error {
	return pkgerrors.New(message)
}

func Errorf(format string, args ...interface{}) error {
	return pkgerrors.Errorf(format, args...)
}

func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}

func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return goerrors.As(err, target)
}

func Cause(err error) error {
	return pkgerrors.Cause(err)
}

// interrupted is returned when a lock wait is cancelled. It matches both
// ErrInterrupted and the context error that caused it.
type interrupted struct {
	cause error
}

func (e *interrupted) Error() string {
	return string(ErrInterrupted) + ": " + e.cause.Error()
}

func (e *interrupted) Is(target error) bool {
	return target == ErrInterrupted
}

func (e *interrupted) Unwrap() error {
	return e.cause
}

// NewInterrupted wraps a context error as a cancellation of a blocked acquire.
func NewInterrupted(cause error) error {
	return &interrupted{cause: cause}
}

func IsInvalidArgument(err error) bool {
	return Is(err, ErrInvalidPermission) || Is(err, ErrPageOutOfRange) || Is(err, ErrSchemaMismatch) ||
		Is(err, ErrUnknownTable) || Is(err, ErrPagesCached) || Is(err, ErrTableExists)
}

func IsTransactionAborted(err error) bool {
	return Is(err, ErrTxnAborted)
}

func IsInterrupted(err error) bool {
	return Is(err, ErrInterrupted)
}

// IsOperational reports failures a caller may retry once other transactions
// release pressure.
func IsOperational(err error) bool {
	return err != nil && !IsInvalidArgument(err) && !IsTransactionAborted(err) && !IsInterrupted(err)
}

package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal run error.
type ErrorKind string

const (
	KindConfiguration       ErrorKind = "ConfigurationError"
	KindInsufficientHistory ErrorKind = "InsufficientHistoryError"
	KindExchangeFetch       ErrorKind = "ExchangeFetchError"
	KindExchangeExecution   ErrorKind = "ExchangeExecutionError"
	KindInternal            ErrorKind = "InternalError"
)

// ErrInsufficientHistory is wrapped when fewer candles than the valuation
// window are available.
var ErrInsufficientHistory = errors.New("insufficient price history")

// RunError is the fault that moved a run to Failed.
type RunError struct {
	Kind ErrorKind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// WarningKind classifies a non-fatal degradation.
type WarningKind string

const (
	WarnPersistence   WarningKind = "PersistenceWarning"
	WarnNotification  WarningKind = "NotificationError"
	WarnDuplicateRun  WarningKind = "DuplicateRunWarning"
	WarnConfiguration WarningKind = "ConfigurationWarning"
)

// Warning never changes the run outcome.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

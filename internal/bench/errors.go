package bench

import (
	"errors"
	"fmt"
	"time"
)

// ErrOperationInProgress is returned when a timed operation is started on a harness that is
// already running one. The harness does not serialize callers; see suite.Scheduler for queueing.
var ErrOperationInProgress = errors.New("bench: another timed operation is in progress")

// MissingMarkError reports a measurement that references a label never recorded with Mark.
type MissingMarkError struct {
	// Measurement is the name of the measurement that could not be resolved.
	Measurement string
	// Label is the missing mark label.
	Label string
}

// Error implements the error interface.
func (e *MissingMarkError) Error() string {
	return fmt.Sprintf(
		"bench: missing mark for measurement: measurement=%s label=%s",
		e.Measurement,
		e.Label,
	)
}

// NegativeDurationError reports a measurement whose end mark precedes its start mark. This
// usually means a label was reused out of order.
type NegativeDurationError struct {
	Measurement string
	Start       string
	End         string
	Duration    time.Duration
}

// Error implements the error interface.
func (e *NegativeDurationError) Error() string {
	return fmt.Sprintf(
		"bench: end mark precedes start mark: measurement=%s start=%s end=%s duration=%v",
		e.Measurement,
		e.Start,
		e.End,
		e.Duration,
	)
}

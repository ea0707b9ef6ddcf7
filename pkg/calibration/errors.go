package calibration

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrTransformUnavailable is returned when a frame lookup or wait
	// exceeded its timeout. Recoverable: the sample list is untouched and
	// the caller may simply retry.
	ErrTransformUnavailable = errors.New("transform unavailable")

	// ErrNoCalibrationAvailable is returned when a save is attempted
	// before any successful compute.
	ErrNoCalibrationAvailable = errors.New("no calibration available")
)

// IndexOutOfRangeError is returned when a sample removal names an index
// outside the current list.
type IndexOutOfRangeError struct {
	Index int
	Size  int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("sample index %d out of range, have %d samples", e.Index, e.Size)
}

// InsufficientSamplesError is returned when a compute is attempted below
// the minimum sample threshold. The solver is never contacted in that case.
type InsufficientSamplesError struct {
	// Needed is how many more samples must be taken before a compute can
	// be attempted.
	Needed int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("%d more samples needed", e.Needed)
}

// CalibrationFailedError wraps a solver transport or computation failure.
// The previously computed result, if any, is left in place.
type CalibrationFailedError struct {
	Reason error
}

func (e *CalibrationFailedError) Error() string {
	return fmt.Sprintf("calibration failed: %v", e.Reason)
}

func (e *CalibrationFailedError) Unwrap() error {
	return e.Reason
}

// SaveError reports the persistence sinks that failed during a save. Sinks
// that succeeded are not rolled back; the save is retryable as a whole.
type SaveError struct {
	// Failed maps sink name to its write error.
	Failed map[string]error
}

func (e *SaveError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for name := range e.Failed {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failed[name]))
	}
	return "failed to save calibration: " + strings.Join(parts, "; ")
}

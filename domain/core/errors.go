package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Caller supplied something the procedure cannot run with
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidAlpha     = fmt.Errorf("%w: alpha", ErrInvalidParameter)
	ErrInvalidTail      = fmt.Errorf("%w: tail", ErrInvalidParameter)
	ErrInvalidShift     = fmt.Errorf("%w: shift", ErrInvalidParameter)
	ErrInvalidThreshold = fmt.Errorf("%w: threshold", ErrInvalidParameter)
	ErrInvalidGroups    = fmt.Errorf("%w: groups", ErrInvalidParameter)
	ErrInvalidMask      = fmt.Errorf("%w: mask", ErrInvalidParameter)
	ErrInvalidShape     = fmt.Errorf("%w: shape", ErrInvalidParameter)

	// Input that breaks the closed-testing math
	ErrDegenerateInput = errors.New("degenerate input")
	ErrZeroPValue      = fmt.Errorf("%w: p-value exactly zero", ErrDegenerateInput)
	ErrInvalidPValue   = fmt.Errorf("%w: p-value outside (0, 1]", ErrDegenerateInput)

	// A computed quantity left its valid range
	ErrInternalConsistency = errors.New("internal consistency violated")
	ErrTDPOutOfRange       = fmt.Errorf("%w: true discovery proportion outside [0, 1]", ErrInternalConsistency)
)

// NewError attaches context to one of the sentinels above; the result still
// matches the sentinel's category with errors.Is.
func NewError(base error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...))
}

func NewTDPRangeError(tdp float64) error {
	return fmt.Errorf("%w: got %v; did a custom statistic function return something other than p-values?", ErrTDPOutOfRange, tdp)
}

// Error checking helpers
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsDegenerateInput(err error) bool {
	return errors.Is(err, ErrDegenerateInput)
}

func IsInternalConsistency(err error) bool {
	return errors.Is(err, ErrInternalConsistency)
}

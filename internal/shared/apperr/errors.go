package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Domain error sentinels. Handlers map these to response codes, callers
// branch on them with errors.Is.
var (
	ErrNotFound               = errors.New("record not found")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrConflictingActiveStage = errors.New("another stage is already active")
	ErrDuplicateProgress      = errors.New("progress record already exists")
	ErrStalePendencyWrite     = errors.New("pendency was modified concurrently")
)

// Validationf wraps ErrValidation with a human-readable reason.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// Transitionf wraps ErrInvalidTransition with the offending from→to pair.
func Transitionf(from, to string) error {
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}

// Class separates store errors worth retrying from ones that are not.
type Class int

const (
	Permanent Class = iota
	Transient
)

func (c Class) String() string {
	if c == Transient {
		return "transient"
	}
	return "permanent"
}

// Classify reports whether an error is transient (connection-level, retry
// with backoff) or permanent (surface and stop). Domain errors are always
// permanent.
func Classify(err error) Class {
	if err == nil {
		return Permanent
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient
	}
	return Permanent
}

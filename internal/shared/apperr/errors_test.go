package apperr

import (
	"context"
	"errors"
	"net"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, Permanent},
		{"domain error", ErrInvalidTransition, Permanent},
		{"wrapped validation", Validationf("bad input"), Permanent},
		{"deadline", context.DeadlineExceeded, Transient},
		{"canceled", context.Canceled, Transient},
		{"net error", &net.OpError{Op: "dial", Err: &timeoutError{}}, Transient},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.err); got != c.want {
				t.Errorf("Classify(%v) = %s, want %s", c.err, got, c.want)
			}
		})
	}
}

func TestClassString(t *testing.T) {
	if got := Transient.String(); got != "transient" {
		t.Errorf("Transient.String() = %q", got)
	}
	if got := Permanent.String(); got != "permanent" {
		t.Errorf("Permanent.String() = %q", got)
	}
}

func TestTransitionf(t *testing.T) {
	err := Transitionf("finished", "active")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Error("Transitionf should wrap ErrInvalidTransition")
	}
}

type timeoutError struct{}

func (*timeoutError) Error() string   { return "timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }

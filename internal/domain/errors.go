package domain

import (
	"errors"
	"fmt"
	"math"
)

// Kind is the stable machine-readable classification of a dispatch
// failure, surfaced to callers alongside a human message.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindUnavailable       Kind = "unavailable"
	KindNoValidStops      Kind = "no_valid_stops"
	KindOutOfRange        Kind = "out_of_range"
	KindInvalidTransition Kind = "invalid_transition"
	KindInvalidInput      Kind = "invalid_input"
)

// Failure is a typed dispatch error. Meters is populated only for
// out-of-range failures so the driver knows how much closer to get.
type Failure struct {
	Kind   Kind
	Msg    string
	Meters float64
}

func (f *Failure) Error() string { return f.Msg }

// KindOf extracts the failure kind from an error chain, or "" when the
// error is not a typed dispatch failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// AsFailure unwraps a typed failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}

func ErrNotFound(what, id string) *Failure {
	return &Failure{Kind: KindNotFound, Msg: fmt.Sprintf("%s %q not found", what, id)}
}

func ErrUnavailable(driverID string) *Failure {
	return &Failure{Kind: KindUnavailable, Msg: fmt.Sprintf("driver %q is not available", driverID)}
}

func ErrNoValidStops() *Failure {
	return &Failure{Kind: KindNoValidStops, Msg: "no stops with valid coordinates"}
}

// ErrOutOfRange carries the measured distance rounded to whole meters.
func ErrOutOfRange(meters float64, radiusMeters float64) *Failure {
	rounded := math.Round(meters)
	return &Failure{
		Kind:   KindOutOfRange,
		Msg:    fmt.Sprintf("driver is %.0f m from the vendor, must be within %.0f m to start", rounded, radiusMeters),
		Meters: rounded,
	}
}

func ErrInvalidTransition(from DeliveryStatus, op string) *Failure {
	return &Failure{
		Kind: KindInvalidTransition,
		Msg:  fmt.Sprintf("cannot %s a delivery in state %q", op, from),
	}
}

func ErrInvalidInput(msg string) *Failure {
	return &Failure{Kind: KindInvalidInput, Msg: msg}
}

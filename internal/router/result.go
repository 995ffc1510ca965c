package router

import (
	"context"
	"errors"
	"fmt"
)

// Outcome is the tag of a dispatch result.
type Outcome string

const (
	// OutcomeHandled means exactly one service executed and returned a payload.
	OutcomeHandled Outcome = "handled"
	// OutcomeFallback means no service was confident enough (or several tied)
	// and the caller should take the plain conversational path.
	OutcomeFallback Outcome = "fallback"
	// OutcomeFailed means the selected service executed and failed. The router
	// does not cascade to the next-highest scorer.
	OutcomeFailed Outcome = "failed"
)

// ErrorKind classifies a service execution failure.
type ErrorKind string

const (
	// KindInvalidArguments marks a malformed request reaching a service.
	KindInvalidArguments ErrorKind = "invalid_arguments"
	// KindRemoteUnavailable marks an unreachable or erroring downstream API.
	KindRemoteUnavailable ErrorKind = "remote_unavailable"
	// KindTimeout marks a deadline exceeded during execution.
	KindTimeout ErrorKind = "timeout"
)

// ServiceError is the error type services return from Execute. The router
// surfaces its Kind in the Failed result; it never propagates past the
// router boundary as a raw error.
type ServiceError struct {
	Kind ErrorKind
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Failf builds a ServiceError with a formatted message.
func Failf(kind ErrorKind, format string, args ...any) error {
	return &ServiceError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Classify maps an Execute error to its ErrorKind. Context deadline errors
// always classify as Timeout; anything untyped defaults to RemoteUnavailable.
func Classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindRemoteUnavailable
}

// Payload is the structured response produced by a service execution.
type Payload struct {
	// Text is the user-presentable answer.
	Text string `json:"text"`
	// Data carries structured fields for machine consumers (order ids,
	// temperatures, timestamps, ...).
	Data map[string]any `json:"data,omitempty"`
}

// Result is the outcome of one routing decision.
type Result struct {
	Outcome Outcome
	// Service is the name of the selected service for Handled and Failed.
	Service string
	// Score is the winning confidence for Handled and Failed.
	Score float64
	// Payload is set only for Handled.
	Payload *Payload
	// Kind and Err are set only for Failed.
	Kind ErrorKind
	Err  error
}

// Handled reports whether a service produced a payload.
func (r Result) Handled() bool { return r.Outcome == OutcomeHandled }

// Fallback reports whether the conversational path should answer.
func (r Result) Fallback() bool { return r.Outcome == OutcomeFallback }

// Failed reports whether the selected service errored.
func (r Result) Failed() bool { return r.Outcome == OutcomeFailed }

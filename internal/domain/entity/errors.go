package entity

import (
	"context"
	"errors"
)

var (
	// ErrTransport marks failures to complete a call to the upstream, including non-2xx answers.
	ErrTransport = errors.New("transport failure")
	// ErrParse marks upstream responses that do not fit the expected shape.
	ErrParse = errors.New("parse failure")
	// ErrDeadlineExceeded marks a network whose fetch did not finish within its deadline.
	ErrDeadlineExceeded = errors.New("network deadline exceeded")
	// ErrUnknownNetwork is returned by data sources for identifiers they cannot serve.
	ErrUnknownNetwork = errors.New("unknown network")
)

// Failure reasons used in logs and metric labels.
const (
	ReasonTransport = "transport"
	ReasonParse     = "parse"
	ReasonDeadline  = "deadline"
	ReasonUnknown   = "unknown"
)

// ClassifyFailure maps a fetch error to a short reason label.
func ClassifyFailure(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return ReasonDeadline
	case errors.Is(err, ErrParse):
		return ReasonParse
	case errors.Is(err, ErrTransport), errors.Is(err, context.Canceled):
		return ReasonTransport
	default:
		return ReasonUnknown
	}
}

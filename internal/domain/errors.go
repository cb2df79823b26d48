package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrCityNotFound     = errors.New("city not found")
	ErrUpstream         = errors.New("upstream provider failure")
	ErrMalformedPayload = errors.New("malformed provider payload")
)

// UpstreamError describes a failed call to the weather provider. StatusCode is
// zero when no HTTP response was received (timeout, DNS, connection refused).
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", ErrUpstream, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", ErrUpstream, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrUpstream, e.Err)
	default:
		return ErrUpstream.Error()
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// MalformedPayloadError is returned when the provider answered 200 but the body
// could not be decoded or is missing required fields.
type MalformedPayloadError struct {
	Fields []string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: invalid fields: %s", ErrMalformedPayload, strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrMalformedPayload, e.Err)
	}
	return ErrMalformedPayload.Error()
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

func (e *MalformedPayloadError) Is(target error) bool { return target == ErrMalformedPayload }

package dataservice

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is.
var (
	ErrFetchFailure  = errors.New("fetch failure")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrInvalidURL    = errors.New("invalid data service url")
)

// Kind classifies a FetchError.
type Kind string

// Failure kinds.
const (
	KindNetwork Kind = "network"
	KindStatus  Kind = "status"
	KindDecode  Kind = "decode"
	KindShape   Kind = "shape"
)

// FetchError is the typed failure of one data service call. Error returns
// the message meant for the user.
type FetchError struct {
	Kind     Kind
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *FetchError) Error() string { return e.Message }

// Unwrap exposes ErrFetchFailure, ErrShapeMismatch for shape errors, and the
// underlying cause.
func (e *FetchError) Unwrap() []error {
	errs := []error{ErrFetchFailure}
	if e.Kind == KindShape {
		errs = append(errs, ErrShapeMismatch)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func networkError(ep endpoint, err error) *FetchError {
	return &FetchError{
		Kind:     KindNetwork,
		Endpoint: ep.name,
		Message:  fmt.Sprintf("%s: %v", ep.failure, err),
		Err:      err,
	}
}

// statusError surfaces the service's {error} text verbatim, or the default
// failure message when the body carries none.
func statusError(ep endpoint, status int, serviceMsg string) *FetchError {
	msg := serviceMsg
	if msg == "" {
		msg = ep.failure
	}
	return &FetchError{Kind: KindStatus, Endpoint: ep.name, Status: status, Message: msg}
}

func decodeError(ep endpoint, err error) *FetchError {
	return &FetchError{
		Kind:     KindDecode,
		Endpoint: ep.name,
		Message:  fmt.Sprintf("%s: invalid JSON: %v", ep.failure, err),
		Err:      err,
	}
}

func shapeError(ep endpoint, detail string) *FetchError {
	return &FetchError{
		Kind:     KindShape,
		Endpoint: ep.name,
		Message:  fmt.Sprintf("%s: unexpected response shape: %s", ep.failure, detail),
	}
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Client input errors.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidImageFormat   = errors.New("invalid image format")
	ErrInvalidImageEncoding = errors.New("invalid image encoding")
	ErrImageTooLarge        = errors.New("image too large")
	ErrEmptyImage           = errors.New("empty image")
	ErrNoRoute              = errors.New("no route found")
)

// Upstream contract violations and transport failures.
var (
	ErrMalformedModelOutput   = errors.New("malformed model output")
	ErrDistanceResultMismatch = errors.New("distance result mismatch")
	ErrUpstreamService        = errors.New("upstream service error")
)

// UpstreamError is a transport-level failure of an external gateway.
// Message keeps the upstream text verbatim where one was available.
type UpstreamError struct {
	Service string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s %d: %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamService }

// Upstream wraps err as an UpstreamError of service. A nil err stays nil and an
// error that already is an UpstreamError is returned unchanged.
func Upstream(service string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Service: service, Message: err.Error(), Err: err}
}

// MalformedOutputError carries the model payload that failed validation so
// callers can log it.
type MalformedOutputError struct {
	Reason  string
	Payload string
}

func (e *MalformedOutputError) Error() string {
	return ErrMalformedModelOutput.Error() + ": " + e.Reason
}

func (e *MalformedOutputError) Is(target error) bool { return target == ErrMalformedModelOutput }

// HTTPStatus maps an error from the core to the status code returned to clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNoRoute):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidImageFormat),
		errors.Is(err, ErrInvalidImageEncoding),
		errors.Is(err, ErrEmptyImage):
		return http.StatusBadRequest
	case errors.Is(err, ErrMalformedModelOutput),
		errors.Is(err, ErrDistanceResultMismatch),
		errors.Is(err, ErrUpstreamService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err was caused by the request payload.
func IsClientError(err error) bool {
	code := HTTPStatus(err)
	return code >= 400 && code < 500
}

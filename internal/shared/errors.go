package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrHandoffExpired  = fmt.Errorf("login handoff expired")
	ErrHandoffRejected = fmt.Errorf("login handoff rejected")
	ErrUnauthenticated = fmt.Errorf("not logged in")
	ErrSessionExpired  = fmt.Errorf("session expired, please log in again")
	ErrTimeout         = fmt.Errorf("operation timed out")

	// API and service errors
	ErrRequestFailed      = fmt.Errorf("request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRecordNotFound     = fmt.Errorf("record not found")

	// Input validation errors
	ErrValidationFailed = fmt.Errorf("validation failed")
	ErrInvalidState     = fmt.Errorf("invalid state")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
)

// RequestError is a non-success response from the VibeSync API.
//
// It matches [ErrRequestFailed] with [errors.Is]. Reason holds the server's explanation when one was sent.
type RequestError struct {
	Status int
	Reason string
}

func (e *RequestError) Error() string {
	return e.Reason
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// Reason returns the human readable explanation carried by err: the server reason for a [RequestError], the error text otherwise.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Reason
	}
	return err.Error()
}

package wiki

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse matches every MalformedResponseError via errors.Is.
var ErrMalformedResponse = errors.New("malformed api response")

// MalformedResponseError reports a response that could not be decoded or
// lacked a key the client depends on.
type MalformedResponseError struct {
	Endpoint string
	Field    string
	Detail   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed %s response", e.Endpoint)
	if e.Field != "" {
		msg += ": missing " + e.Field
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is lets errors.Is(err, ErrMalformedResponse) match.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// NetworkError covers transport failures, timeouts and non-2xx statuses.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed: http %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the GET may succeed.
func (e *NetworkError) Retryable() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return e.StatusCode >= http.StatusInternalServerError
	}
}

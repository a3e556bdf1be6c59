package core

import (
	"errors"
	"fmt"
)

// Error codes carried by fetch failures so callers can branch without
// inspecting messages.
const (
	CodeTransport = 1000
	CodeHTTP      = 1100
)

// Sentinel errors for errors.Is checks against the typed failures below.
var (
	ErrTransport = errors.New("transport failure")
	ErrHTTP      = errors.New("http failure")
)

// TransportError is returned when the request could not complete
// (DNS, connection refused, TLS, timeout).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("requested page could not be retrieved: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports a match against ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Code returns CodeTransport.
func (e *TransportError) Code() int { return CodeTransport }

// Retryable reports true: transport failures are usually transient.
func (e *TransportError) Retryable() bool { return true }

// HTTPError is returned when the server answered with a status other than 200.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("requested page could not be retrieved: received http code %d", e.StatusCode)
}

// Is reports a match against ErrHTTP.
func (e *HTTPError) Is(target error) bool { return target == ErrHTTP }

// Code returns CodeHTTP.
func (e *HTTPError) Code() int { return CodeHTTP }

// Retryable reports false.
func (e *HTTPError) Retryable() bool { return false }

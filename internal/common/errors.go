// Package common defines the sentinel errors and the transport error type
// shared by the store, the snapshot codec, the transports and the sync
// engine. Callers should match them with errors.Is / errors.As.
package common

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// Store-level errors.
	ErrNotFound    = errors.New("not found")
	ErrCorruptItem = errors.New("corrupt item")
	ErrValidation  = errors.New("validation error")

	// ErrConfiguration is returned before any network call when the remote
	// target is not fully configured.
	ErrConfiguration = errors.New("remote is not configured")

	// ErrFormat marks a snapshot document that cannot be decoded.
	ErrFormat = errors.New("invalid snapshot format")

	// Remote errors.
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSyncInProgress = errors.New("sync already in progress")
)

// bodyPrefixLen bounds how much of a response body is kept on an error.
const bodyPrefixLen = 200

// TransportError describes a failed remote call. StatusCode is zero when the
// request never produced an HTTP response (DNS, timeout, refused connection).
type TransportError struct {
	Backend    string
	Op         string
	StatusCode int
	Body       string
	Err        error
}

// NewTransportError builds a TransportError, keeping only a prefix of body
// that ends on a rune boundary.
func NewTransportError(backend, op string, status int, body []byte, err error) *TransportError {
	if len(body) > bodyPrefixLen {
		cut := bodyPrefixLen
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return &TransportError{Backend: backend, Op: op, StatusCode: status, Body: string(body), Err: err}
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Backend, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Body != "" {
		msg += fmt.Sprintf(" (%s)", e.Body)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

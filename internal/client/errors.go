package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// NetworkErrorMessage is shown when no response reached the client
const NetworkErrorMessage = "Network error. Please try again."

// Error is returned for every failed call: network failure, timeout, or a
// non-2xx status. StatusCode is zero when no response was received.
type Error struct {
	Method     string
	URL        string
	StatusCode int
	// Message is the backend's "message" (or "error") field, if any
	Message string
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	if e.HasResponse() {
		detail := e.Message
		if detail == "" {
			detail = strings.TrimSpace(string(e.Body))
		}
		if detail == "" {
			detail = http.StatusText(e.StatusCode)
		}
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Method, e.URL, e.StatusCode, detail)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasResponse reports whether the backend answered at all
func (e *Error) HasResponse() bool {
	return e.StatusCode != 0
}

// Unauthorized reports an HTTP 401
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Timeout reports whether the request hit the client timeout or a context
// deadline
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// errorBody covers the failure shapes the backend uses
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func newStatusError(method, url string, status int, body []byte) *Error {
	e := &Error{
		Method:     method,
		URL:        url,
		StatusCode: status,
		Body:       body,
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		e.Message = parsed.Message
		if e.Message == "" && len(parsed.Error) > 0 {
			// "error" is sometimes a string, sometimes an object
			var s string
			if json.Unmarshal(parsed.Error, &s) == nil {
				e.Message = s
			}
		}
	}
	return e
}

// MessageFor returns the backend-provided message carried by err, or
// fallback when there is none
func MessageFor(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// UserMessage is MessageFor plus the generic network message when the
// backend never answered
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && !apiErr.HasResponse() {
		return NetworkErrorMessage
	}
	return MessageFor(err, fallback)
}

// IsUnauthorized reports whether err is an HTTP 401 from the backend
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

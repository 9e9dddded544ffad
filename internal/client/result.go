package client

import (
	"context"
	"errors"
	"net/url"
)

// defaultFailureMessage is used when an operation supplies no fallback
const defaultFailureMessage = "Request failed"

// Result is the normalized outcome of a resource call.
//
// Success=true carries Data with an empty Message and nil Err.
// Success=false carries a non-empty Message for display and the original
// failure in Err; Data is the zero value.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitzero"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// OK wraps data in a successful result
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail converts err into a failed result. The message is the backend's when
// it sent one, fallback otherwise.
func Fail[T any](err error, fallback string) Result[T] {
	if fallback == "" {
		fallback = defaultFailureMessage
	}
	if err == nil {
		err = errors.New(fallback)
	}
	return Result[T]{
		Success: false,
		Message: MessageFor(err, fallback),
		Err:     err,
	}
}

// Unwrap returns the data, or an error describing the failure
func (r Result[T]) Unwrap() (T, error) {
	if r.Success {
		return r.Data, nil
	}
	var zero T
	if r.Err != nil {
		return zero, &ResultError{Message: r.Message, Err: r.Err}
	}
	return zero, errors.New(r.Message)
}

// ResultError pairs the display message of a failed Result with its cause
type ResultError struct {
	Message string
	Err     error
}

func (e *ResultError) Error() string { return e.Message }

func (e *ResultError) Unwrap() error { return e.Err }

// Envelope is the body shape the backend answers with
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Call performs one request and normalizes the outcome. It never returns a
// Go error: transport failures, non-2xx statuses, undecodable bodies and
// bodies with "success": false all become a failed Result.
func Call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any, fallback string) Result[T] {
	resp, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return Fail[T](err, fallback)
	}

	var env struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
		Data    T      `json:"data"`
	}
	if err := resp.Decode(&env); err != nil {
		return Fail[T](&Error{
			Method:     resp.Method,
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Err:        err,
		}, fallback)
	}

	if env.Success != nil && !*env.Success {
		return Fail[T](&Error{
			Method:     resp.Method,
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			Body:       resp.Body,
			Err:        errors.New("backend reported failure"),
		}, fallback)
	}

	return OK(env.Data)
}

package client

import (
	"net/http"

	"github.com/rs/zerolog"
)

// maxLoggedBody bounds the body excerpt written to debug logs
const maxLoggedBody = 2048

// Observer receives diagnostics for every request. Implementations must not
// modify the request or the session.
type Observer interface {
	Request(req *http.Request)
	Response(req *http.Request, resp *Response)
	Failure(req *http.Request, err *Error)
}

// NopObserver discards diagnostics
type NopObserver struct{}

func (NopObserver) Request(*http.Request) {}

func (NopObserver) Response(*http.Request, *Response) {}

func (NopObserver) Failure(*http.Request, *Error) {}

// LogObserver writes diagnostics with zerolog
type LogObserver struct {
	Logger zerolog.Logger
}

func (o LogObserver) Request(req *http.Request) {
	o.Logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Bool("authenticated", req.Header.Get("Authorization") != "").
		Msg("API request")
}

func (o LogObserver) Response(req *http.Request, resp *Response) {
	o.Logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Int("status", resp.StatusCode).
		Str("body", excerpt(resp.Body)).
		Msg("API response")
}

func (o LogObserver) Failure(req *http.Request, err *Error) {
	event := o.Logger.Warn().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", req.Header.Get(RequestIDHeader))

	switch {
	case err.Unauthorized():
		// Credentials are kept; signing out is the caller's decision
		event.Int("status", err.StatusCode).
			Str("message", err.Message).
			Msg("API request unauthorized")
	case err.HasResponse():
		event.Int("status", err.StatusCode).
			Str("message", err.Message).
			Str("body", excerpt(err.Body)).
			Msg("API request rejected")
	default:
		event.Err(err.Err).
			Bool("timeout", err.Timeout()).
			Msg("API request failed")
	}
}

func excerpt(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}

package shopapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// RemoteError is returned when the API responded with a non-success
// status. Message carries the server's structured error body when one
// could be parsed, otherwise a generic fallback.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("shop API: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// TransportError is returned when no response was received at all
// (connection refused, DNS failure, timeout). It is distinct from
// RemoteError so callers can tell "server rejected" from "server
// unreachable".
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("shop API unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError reports a client-side check failure on a user-entered
// field, detected before any remote call is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// errorBody matches the shapes the backend uses for error responses:
// {"error": "..."} on most routes, {"message": "..."} on a few.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// newRemoteError builds a RemoteError from a non-2xx response body.
func newRemoteError(statusCode int, body []byte) *RemoteError {
	msg := "request failed"

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Error != "":
			msg = eb.Error
		case eb.Message != "":
			msg = eb.Message
		}
	}

	return &RemoteError{StatusCode: statusCode, Message: msg}
}

package client

import (
	"errors"
	"fmt"
)

var ErrUnexpectedResponse = errors.New("unexpected response")

// APIError is returned for any non-2xx response. Message comes from the
// JSON {"error": "..."} body when present, otherwise it is "HTTP <status>".
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(status int, body []byte) *APIError {
	msg := errorMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &APIError{Status: status, Message: msg}
}

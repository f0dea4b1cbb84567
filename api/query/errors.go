package query

import (
	"errors"
	"fmt"
	"net/http"
)

// ClientError is a request error that is safe to return to the caller.
// Errcode mirrors the HTTP status the handler should respond with; Kind is a
// stable machine-readable identifier such as "invalid_area_code".
type ClientError struct {
	Errcode int    `json:"errcode"`
	Kind    string `json:"-"`
	Message string `json:"message"`
}

func (e *ClientError) Error() string {
	return e.Message
}

// Validation returns a 422 client error.
func Validation(kind, format string, args ...any) *ClientError {
	return &ClientError{
		Errcode: http.StatusUnprocessableEntity,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// BadRequest returns a 400 client error for malformed requests.
func BadRequest(format string, args ...any) *ClientError {
	return &ClientError{
		Errcode: http.StatusBadRequest,
		Kind:    "bad_request",
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound returns a 404 client error. Listing endpoints return empty rows
// instead; only reshapers with an explicit empty-result contract use this.
func NotFound(format string, args ...any) *ClientError {
	return &ClientError{
		Errcode: http.StatusNotFound,
		Kind:    "not_found",
		Message: fmt.Sprintf(format, args...),
	}
}

// AsClientError unwraps err to a *ClientError if there is one in the chain.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

package server

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError carries the status code and the message a client should see.
// Handlers return it as is; anything else becomes a 500 with the error text.
type RequestError struct {
	StatusCode int
	Err        error
}

func (r *RequestError) Error() string {
	return fmt.Sprintf("status %d: err %v", r.StatusCode, r.Err)
}

func (r *RequestError) Unwrap() error {
	return r.Err
}

var (
	ErrMissingFile     = &RequestError{Err: errors.New("No file provided"), StatusCode: http.StatusBadRequest}
	ErrMissingQuestion = &RequestError{Err: errors.New("No question provided"), StatusCode: http.StatusBadRequest}
	ErrBadUpload       = &RequestError{Err: errors.New("could not read upload"), StatusCode: http.StatusBadRequest}

	ErrInternalServerError = &RequestError{Err: errors.New("internal server error"), StatusCode: http.StatusInternalServerError}
)

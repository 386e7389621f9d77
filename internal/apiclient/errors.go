package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels classify every failure the client can return. Compare with
// errors.Is; an *APIError matches the sentinel of its status class.
var (
	ErrTransport    = errors.New("server unreachable")
	ErrUnauthorized = errors.New("not authenticated")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("request rejected")
)

// APIError is a non-2xx response. Detail is the server's human readable
// message, when it sent one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		switch e.Status {
		case http.StatusBadRequest, http.StatusForbidden, http.StatusConflict, http.StatusUnprocessableEntity:
			return true
		}
	case ErrTransport:
		return e.Status >= 500
	}
	return false
}

// Detail returns the server supplied message carried by err, or "".
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// Message returns Detail(err) when present, fallback otherwise.
func Message(err error, fallback string) string {
	if d := Detail(err); d != "" {
		return d
	}
	return fallback
}

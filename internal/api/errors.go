package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error is a non-2xx response from the API
type Error struct {
	StatusCode int
	Body       []byte
	// Detail is the backend's "detail" message when it sent a string one
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Body: body}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		// validation errors carry a list here, only plain messages are kept
		var detail string
		if json.Unmarshal(payload.Detail, &detail) == nil {
			e.Detail = detail
		}
	}
	return e
}

// Detail returns the backend detail message carried by err, if any
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// IsStatus reports whether err is an API error with the given status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

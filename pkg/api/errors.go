package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned when the conversion service answers with a
// non-success status code. Detail carries the structured error message
// the service embeds in its JSON body when one is present.
type StatusError struct {
	Operation  string
	StatusCode int
	Detail     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s failed (status %d): %s", e.Operation, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s failed (status %d): %s", e.Operation, e.StatusCode, e.Body)
}

func newStatusError(operation string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &payload)

	return &StatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Detail:     payload.Detail,
		Body:       string(body),
	}
}

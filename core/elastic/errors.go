package elastic

import (
	"errors"
	"fmt"
	"strings"
)

// BackendError reports a non-success status from the commerce backend.
// It is never retried; the failed event is logged and the conversation
// state is left untouched so the next interaction retries from it.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("elastic: backend returned %d: %s", e.Status, e.Body)
}

// APIError is a single error object from the backend's errors array.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ValidationError reports a recoverable customer-creation failure, such as a
// malformed or duplicate email. The conversation flow is expected to prompt
// the user to retry.
type ValidationError struct {
	Errors []APIError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "elastic: validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, apiErr := range e.Errors {
		if apiErr.Detail != "" {
			parts = append(parts, apiErr.Detail)
			continue
		}
		parts = append(parts, apiErr.Title)
	}
	return "elastic: validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a recoverable validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

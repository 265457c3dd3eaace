package analysis

import (
	"fmt"
	"strings"
)

// ValidationError reports required input fields that were missing or empty.
// It is raised before any model-boundary call and is never retried.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// RateLimitError is surfaced after the retry budget is exhausted on
// quota/rate-limit failures.
type RateLimitError struct {
	Attempts int
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a model response that failed schema
// validation or decoding. Retrying a formatting bug rarely helps, so it is
// surfaced immediately.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed model response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// isRateLimited reports whether an error from the model boundary signals a
// quota or rate limit. The boundary contract is message-based: a "429" or a
// quota keyword selects the retry path, anything else is non-retryable.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "quota", "rate limit", "resource exhausted", "resource_exhausted"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

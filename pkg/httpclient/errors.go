package httpclient

import (
	"errors"
	"fmt"
)

// RetryableError reports that a request kept failing with transient errors
// after the retry budget was exhausted.
type RetryableError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RetryableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryExhausted reports whether err is a RetryableError.
func IsRetryExhausted(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

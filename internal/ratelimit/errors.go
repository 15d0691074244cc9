package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// LimitError reports a rejected attempt and how long the caller should
// wait before retrying. Nothing is persisted for a rejected attempt.
type LimitError struct {
	Scope      string
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded, retry after %s", e.Scope, e.RetryAfter.Round(time.Second))
}

// AsLimitError unwraps a LimitError from an error chain.
func AsLimitError(err error) (*LimitError, bool) {
	var le *LimitError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

package reviews

import "errors"

var (
	ErrNotFound       = errors.New("review request not found")
	ErrResumeNotReady = errors.New("resume extraction has not completed")
	ErrNoResult       = errors.New("review has no result")
)

const (
	ErrorCodeAgentFailure = "AGENT_FAILURE"
	ErrorCodeAgentTimeout = "AGENT_TIMEOUT"
	ErrorCodeStorage      = "STORAGE_ERROR"
	ErrorCodeInternal     = "INTERNAL_ERROR"
)

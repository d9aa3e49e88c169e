package bluesky

import (
	"fmt"
)

// ErrorKind classifies publish failures for diagnostics. All kinds surface to
// the pipeline as a failed item; none abort the run.
type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindRateLimit  ErrorKind = "rate_limit"
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
)

// PublishError is returned for any failure while posting to the backend.
type PublishError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *PublishError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("publish failed (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("publish failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("publish failed (%s): %s", e.Kind, e.Message)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

func classifyStatus(code int) ErrorKind {
	switch {
	case code == 401 || code == 403:
		return KindAuth
	case code == 429:
		return KindRateLimit
	case code >= 400 && code < 500:
		return KindValidation
	default:
		return KindTransport
	}
}

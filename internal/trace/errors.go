package trace

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/constants"
)

// SourceError describes a failure against one of the upstream sources.
// Key identifies the request (icao/date or registry prefix) so that per-unit
// failure logs point at the exact blob that could not be produced.
type SourceError struct {
	Code    string
	Key     string
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Message, e.Key, e.Err)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Key)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError builds a SourceError with the catalog message for code.
func NewSourceError(code, key string, err error) *SourceError {
	return &SourceError{
		Code:    code,
		Key:     key,
		Message: constants.GetErrorMessage(code),
		Err:     err,
	}
}

// RateLimitError is an HTTP 429 from the source, carrying the parsed
// Retry-After so the backoff can honor the source's own pacing.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Key        string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s [%s] (retry after %v)",
			constants.GetErrorMessage(constants.ErrCodeRateLimited), e.Key, e.RetryAfter)
	}
	return fmt.Sprintf("%s [%s]", constants.GetErrorMessage(constants.ErrCodeRateLimited), e.Key)
}

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	if rle, ok := err.(*RateLimitError); ok {
		return rle, true
	}
	return nil, false
}

// ParseRetryAfter extracts the Retry-After header value, supporting both
// delay-seconds and HTTP-date formats. Returns 0 when absent or unusable.
func ParseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(retryTime); d > 0 {
			return d
		}
	}
	return 0
}

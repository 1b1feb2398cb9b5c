package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// SourceError wraps a failure from the external data source. The ingestion
// pipeline treats any source failure as recoverable and substitutes
// synthesized attributes, so this exists for logging and classification,
// never for control flow that aborts a record.
type SourceError struct {
	Err        error
	StatusCode int
}

func (e *SourceError) Error() string {
	return e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError wraps an error from the data source with an optional HTTP
// status code.
func NewSourceError(err error, statusCode int) *SourceError {
	return &SourceError{Err: err, StatusCode: statusCode}
}

// IsSourceUnavailable returns true if the error chain indicates the external
// source could not be reached or answered with a server-side failure.
func IsSourceUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var se *SourceError
	if errors.As(err, &se) {
		return se.StatusCode == 0 || isRetryableStatus(se.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	patterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

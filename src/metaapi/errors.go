package metaapi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when the service answered 2xx with a body that is
// not the expected JSON shape.
var ErrMalformed = errors.New("malformed response")

// HTTPStatusError means the metadata service answered with a non-2xx status.
// Detail carries the service's own message when it sent one.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Detail     string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	detail := strings.TrimSpace(e.Detail)
	if detail == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error! status: %d: %s", e.StatusCode, detail)
}

// StatusCode extracts the upstream status from err, or 0.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

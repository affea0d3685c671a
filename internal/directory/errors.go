// internal/directory/errors.go
package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// RequestError is any non-2xx answer from the directory service. The remote
// code and message are kept verbatim for diagnostics.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("directory: request failed with status %d", e.StatusCode)
	if e.Code != "" {
		msg += fmt.Sprintf(" code=%s", e.Code)
	}
	if e.Message != "" {
		msg += fmt.Sprintf(": %s", e.Message)
	}
	if e.RequestID != "" {
		msg += fmt.Sprintf(" (request-id %s)", e.RequestID)
	}
	return msg
}

// ConflictError is an optimistic-concurrency rejection (stale If-Match) or a
// resource-already-exists answer. Callers decide whether a conflict is a
// failure or, for assignment creation, an acceptable "exists" outcome.
type ConflictError struct {
	RequestError
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports a 404 answer.
func IsNotFound(err error) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode == http.StatusNotFound
	}
	return false
}

// remoteError is the service's error envelope.
type remoteError struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		InnerError struct {
			RequestID string `json:"request-id"`
		} `json:"innerError"`
	} `json:"error"`
}

// errorFrom maps a non-2xx resty response to the taxonomy. 409 and 412 become
// ConflictError, everything else RequestError.
func errorFrom(resp *resty.Response) error {
	re := RequestError{StatusCode: resp.StatusCode()}
	var env remoteError
	if jerr := json.Unmarshal(resp.Body(), &env); jerr == nil {
		re.Code = env.Error.Code
		re.Message = env.Error.Message
		re.RequestID = env.Error.InnerError.RequestID
	}
	if re.Message == "" && len(resp.Body()) > 0 {
		re.Message = string(resp.Body())
	}
	switch resp.StatusCode() {
	case http.StatusConflict, http.StatusPreconditionFailed:
		return &ConflictError{RequestError: re}
	default:
		return &re
	}
}

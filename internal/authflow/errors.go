// internal/authflow/errors.go
package authflow

import (
	"fmt"
	"time"
)

// BindError: the loopback listener could not be bound, typically because
// another authorization is already in flight on the same port.
type BindError struct {
	Port int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("authflow: cannot bind loopback listener on port %d: %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// DeniedError: the authorization server redirected back with an error. Code
// and description are the server's own, kept verbatim.
type DeniedError struct {
	Code        string
	Description string
}

func (e *DeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authflow: authorization denied (%s): %s", e.Code, e.Description)
	}
	return fmt.Sprintf("authflow: authorization denied (%s)", e.Code)
}

// TimeoutError: no callback arrived before the deadline. Distinguished from
// DeniedError so callers can decide to wait longer next time.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("authflow: no authorization callback within %s", e.Timeout)
}

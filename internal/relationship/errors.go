// internal/relationship/errors.go
package relationship

import (
	"fmt"
	"time"
)

// InvalidStateError rejects a lifecycle action the current status does not
// allow. The action was never sent to the directory service.
type InvalidStateError struct {
	RelationshipID string
	Action         string
	Status         string
	Hint           string
}

func (e *InvalidStateError) Error() string {
	msg := fmt.Sprintf("relationship %s: cannot %s while %s", e.RelationshipID, e.Action, e.Status)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

// TerminationTimeoutError: the terminate request was accepted but the remote
// system did not settle within the polling ceiling. The relationship is left
// terminating remotely; calling Terminate again later just re-polls.
type TerminationTimeoutError struct {
	RelationshipID string
	Waited         time.Duration
	LastStatus     string
}

func (e *TerminationTimeoutError) Error() string {
	return fmt.Sprintf("relationship %s: still %s after %s", e.RelationshipID, e.LastStatus, e.Waited)
}

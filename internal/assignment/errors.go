// internal/assignment/errors.go
package assignment

import (
	"fmt"
	"strings"
)

// NotActiveError: assignments can only be mutated inside an active
// relationship. Nothing was sent to the directory service.
type NotActiveError struct {
	RelationshipID string
	Status         string
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("assignment: relationship %s is %s, not active", e.RelationshipID, e.Status)
}

// RoleNotApprovedError lists requested roles outside the relationship's
// approved set.
type RoleNotApprovedError struct {
	RelationshipID string
	Roles          []string
}

func (e *RoleNotApprovedError) Error() string {
	return fmt.Sprintf("assignment: roles not approved on relationship %s: %s",
		e.RelationshipID, strings.Join(e.Roles, ", "))
}

// GroupTimeoutError: a freshly created group never became visible within the
// propagation polling budget.
type GroupTimeoutError struct {
	DisplayName string
}

func (e *GroupTimeoutError) Error() string {
	return fmt.Sprintf("assignment: group %q not visible after propagation wait", e.DisplayName)
}

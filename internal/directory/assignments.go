// internal/directory/assignments.go
package directory

import (
	"context"
	"fmt"
)

func assignmentsPath(relationshipID string) string {
	return relationshipsPath + "/" + relationshipID + "/accessAssignments"
}

func (c *Client) ListAssignments(ctx context.Context, auth, relationshipID string) ([]AccessAssignment, error) {
	return listAll[AccessAssignment](ctx, c, auth, assignmentsPath(relationshipID))
}

func (c *Client) GetAssignment(ctx context.Context, auth, relationshipID, assignmentID string) (AccessAssignment, error) {
	var out AccessAssignment
	resp, err := c.req(ctx, auth).
		SetResult(&out).
		Get(assignmentsPath(relationshipID) + "/" + assignmentID)
	if err != nil {
		return AccessAssignment{}, fmt.Errorf("directory: get assignment %s: %w", assignmentID, err)
	}
	if resp.IsError() {
		return AccessAssignment{}, errorFrom(resp)
	}
	return out, nil
}

// CreateAssignment returns ConflictError on 409 so callers can treat an
// already-existing assignment as success.
func (c *Client) CreateAssignment(ctx context.Context, auth, relationshipID string, assignment AccessAssignment) (AccessAssignment, error) {
	var out AccessAssignment
	resp, err := c.req(ctx, auth).
		SetBody(assignment).
		SetResult(&out).
		Post(assignmentsPath(relationshipID))
	if err != nil {
		return AccessAssignment{}, fmt.Errorf("directory: create assignment on %s: %w", relationshipID, err)
	}
	if resp.IsError() {
		return AccessAssignment{}, errorFrom(resp)
	}
	return out, nil
}

// UpdateAssignment patches the role set conditionally on etag.
func (c *Client) UpdateAssignment(ctx context.Context, auth, relationshipID, assignmentID, etag string, details AccessDetails) (AccessAssignment, error) {
	var out AccessAssignment
	resp, err := c.req(ctx, auth).
		SetHeader(headerIfMatch, etag).
		SetBody(map[string]AccessDetails{"accessDetails": details}).
		SetResult(&out).
		Patch(assignmentsPath(relationshipID) + "/" + assignmentID)
	if err != nil {
		return AccessAssignment{}, fmt.Errorf("directory: update assignment %s: %w", assignmentID, err)
	}
	if resp.IsError() {
		return AccessAssignment{}, errorFrom(resp)
	}
	return out, nil
}

func (c *Client) DeleteAssignment(ctx context.Context, auth, relationshipID, assignmentID, etag string) error {
	resp, err := c.req(ctx, auth).
		SetHeader(headerIfMatch, etag).
		Delete(assignmentsPath(relationshipID) + "/" + assignmentID)
	if err != nil {
		return fmt.Errorf("directory: delete assignment %s: %w", assignmentID, err)
	}
	if resp.IsError() {
		return errorFrom(resp)
	}
	return nil
}

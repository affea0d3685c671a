// internal/directory/relationships.go
package directory

import (
	"context"
	"fmt"
)

const relationshipsPath = "/tenantRelationships/delegatedAdminRelationships"

const headerIfMatch = "If-Match"

func (c *Client) CreateRelationship(ctx context.Context, auth string, rel Relationship) (Relationship, error) {
	var out Relationship
	resp, err := c.req(ctx, auth).
		SetBody(rel).
		SetResult(&out).
		Post(relationshipsPath)
	if err != nil {
		return Relationship{}, fmt.Errorf("directory: create relationship: %w", err)
	}
	if resp.IsError() {
		return Relationship{}, errorFrom(resp)
	}
	return out, nil
}

func (c *Client) GetRelationship(ctx context.Context, auth, id string) (Relationship, error) {
	var out Relationship
	resp, err := c.req(ctx, auth).
		SetResult(&out).
		Get(relationshipsPath + "/" + id)
	if err != nil {
		return Relationship{}, fmt.Errorf("directory: get relationship %s: %w", id, err)
	}
	if resp.IsError() {
		return Relationship{}, errorFrom(resp)
	}
	return out, nil
}

func (c *Client) ListRelationships(ctx context.Context, auth string) ([]Relationship, error) {
	return listAll[Relationship](ctx, c, auth, relationshipsPath)
}

// SubmitRelationshipRequest posts a lifecycle action (lockForApproval,
// terminate, reject). etag is sent as If-Match when present; the service
// rejects stale tokens with 409/412.
func (c *Client) SubmitRelationshipRequest(ctx context.Context, auth, relationshipID string, request RelationshipRequest, etag string) (RelationshipRequest, error) {
	r := c.req(ctx, auth).SetBody(request)
	if etag != "" {
		r.SetHeader(headerIfMatch, etag)
	}
	var out RelationshipRequest
	resp, err := r.SetResult(&out).Post(relationshipsPath + "/" + relationshipID + "/requests")
	if err != nil {
		return RelationshipRequest{}, fmt.Errorf("directory: %s relationship %s: %w", request.Action, relationshipID, err)
	}
	if resp.IsError() {
		return RelationshipRequest{}, errorFrom(resp)
	}
	return out, nil
}

// DeleteRelationship removes a terminated relationship. The current etag is
// mandatory: unconditional deletes are not offered by this client.
func (c *Client) DeleteRelationship(ctx context.Context, auth, id, etag string) error {
	resp, err := c.req(ctx, auth).
		SetHeader(headerIfMatch, etag).
		Delete(relationshipsPath + "/" + id)
	if err != nil {
		return fmt.Errorf("directory: delete relationship %s: %w", id, err)
	}
	if resp.IsError() {
		return errorFrom(resp)
	}
	return nil
}

func (c *Client) ListOperations(ctx context.Context, auth, relationshipID string) ([]Operation, error) {
	return listAll[Operation](ctx, c, auth, relationshipsPath+"/"+relationshipID+"/operations")
}

func (c *Client) GetOperation(ctx context.Context, auth, relationshipID, operationID string) (Operation, error) {
	var out Operation
	resp, err := c.req(ctx, auth).
		SetResult(&out).
		Get(relationshipsPath + "/" + relationshipID + "/operations/" + operationID)
	if err != nil {
		return Operation{}, fmt.Errorf("directory: get operation %s: %w", operationID, err)
	}
	if resp.IsError() {
		return Operation{}, errorFrom(resp)
	}
	return out, nil
}

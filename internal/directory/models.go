// internal/directory/models.go
package directory

import (
	"time"
)

// Relationship lifecycle states as reported by the directory service.
// "terminating" is observed while a terminate request settles remotely.
const (
	StatusCreated         = "created"
	StatusApprovalPending = "approvalPending"
	StatusActive          = "active"
	StatusTerminating     = "terminating"
	StatusTerminated      = "terminated"
)

// Relationship request actions accepted by the requests sub-resource.
const (
	ActionLockForApproval = "lockForApproval"
	ActionTerminate       = "terminate"
	ActionReject          = "reject"
)

// TenantInfo mirrors the customer block on a relationship.
type TenantInfo struct {
	TenantID    string `json:"tenantId"`
	DisplayName string `json:"displayName,omitempty"`
}

type UnifiedRole struct {
	RoleDefinitionID string `json:"roleDefinitionId"`
}

type AccessDetails struct {
	UnifiedRoles []UnifiedRole `json:"unifiedRoles"`
}

// Relationship is a delegated-admin trust grant from a customer tenant to the
// service identity. Etag is the concurrency token every mutating call needs.
type Relationship struct {
	ID                 string        `json:"id,omitempty"`
	DisplayName        string        `json:"displayName"`
	Status             string        `json:"status,omitempty"`
	Etag               string        `json:"@odata.etag,omitempty"`
	Duration           string        `json:"duration,omitempty"`
	AutoExtendDuration string        `json:"autoExtendDuration,omitempty"`
	Customer           *TenantInfo   `json:"customer,omitempty"`
	AccessDetails      AccessDetails `json:"accessDetails"`
	CreatedAt          *time.Time    `json:"createdDateTime,omitempty"`
	LastModifiedAt     *time.Time    `json:"lastModifiedDateTime,omitempty"`
	ActivatedAt        *time.Time    `json:"activatedDateTime,omitempty"`
	EndAt              *time.Time    `json:"endDateTime,omitempty"`
}

// RoleIDs flattens the approved unified roles.
func (r Relationship) RoleIDs() []string {
	out := make([]string, 0, len(r.AccessDetails.UnifiedRoles))
	for _, u := range r.AccessDetails.UnifiedRoles {
		out = append(out, u.RoleDefinitionID)
	}
	return out
}

// RelationshipRequest is the action resource driving lifecycle transitions.
type RelationshipRequest struct {
	ID        string     `json:"id,omitempty"`
	Action    string     `json:"action"`
	Reason    string     `json:"reason,omitempty"`
	Status    string     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"createdDateTime,omitempty"`
}

// Operation is a read-only projection of asynchronous work on a relationship.
type Operation struct {
	ID             string     `json:"id,omitempty"`
	Status         string     `json:"status,omitempty"`
	OperationType  string     `json:"operationType,omitempty"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      *time.Time `json:"createdDateTime,omitempty"`
	LastModifiedAt *time.Time `json:"lastModifiedDateTime,omitempty"`
}

type AccessContainer struct {
	AccessContainerID   string `json:"accessContainerId"`
	AccessContainerType string `json:"accessContainerType,omitempty"`
}

// AccessAssignment binds a security group to a role set inside an active
// relationship.
type AccessAssignment struct {
	ID              string          `json:"id,omitempty"`
	Status          string          `json:"status,omitempty"`
	Etag            string          `json:"@odata.etag,omitempty"`
	AccessContainer AccessContainer `json:"accessContainer"`
	AccessDetails   AccessDetails   `json:"accessDetails"`
	CreatedAt       *time.Time      `json:"createdDateTime,omitempty"`
	LastModifiedAt  *time.Time      `json:"lastModifiedDateTime,omitempty"`
}

func (a AccessAssignment) SecurityGroupID() string { return a.AccessContainer.AccessContainerID }

func (a AccessAssignment) RoleIDs() []string {
	out := make([]string, 0, len(a.AccessDetails.UnifiedRoles))
	for _, u := range a.AccessDetails.UnifiedRoles {
		out = append(out, u.RoleDefinitionID)
	}
	return out
}

type Group struct {
	ID              string   `json:"id,omitempty"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description,omitempty"`
	MailNickname    string   `json:"mailNickname,omitempty"`
	MailEnabled     bool     `json:"mailEnabled"`
	SecurityEnabled bool     `json:"securityEnabled"`
	GroupTypes      []string `json:"groupTypes"`
}

type ServicePrincipal struct {
	ID          string `json:"id,omitempty"`
	AppID       string `json:"appId"`
	DisplayName string `json:"displayName,omitempty"`
}

type RoleTemplate struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// Customer is one row of the contracted-customers listing.
type Customer struct {
	ID          string `json:"id,omitempty"`
	TenantID    string `json:"customerId"`
	DisplayName string `json:"displayName,omitempty"`
}

// collection is the paged envelope every list endpoint returns.
type collection[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink,omitempty"`
}

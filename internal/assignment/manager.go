// internal/assignment/manager.go
package assignment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gdap/internal/directory"
	"gdap/pkg/retry"
)

// Directory group propagation: a freshly created group can take a while to
// show up in queries.
const (
	groupPollAttempts = 30
	groupPollInterval = 2 * time.Second
)

const containerSecurityGroup = "securityGroup"

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeExists  Outcome = "exists"
)

// CreateResult distinguishes a fresh assignment from one that already
// existed, so template and bulk callers can treat duplicates as success.
type CreateResult struct {
	Outcome    Outcome
	Assignment directory.AccessAssignment
}

// Manager attaches and detaches role-to-group bindings on an active
// relationship.
type Manager struct {
	log       *zap.SugaredLogger
	dir       *directory.Client
	tokens    directory.TokenSource
	tenantID  string // provider tenant
	groupPoll retry.Policy
}

func NewManager(log *zap.SugaredLogger, dir *directory.Client, tokens directory.TokenSource, providerTenantID string) *Manager {
	return &Manager{
		log:       log,
		dir:       dir,
		tokens:    tokens,
		tenantID:  providerTenantID,
		groupPoll: retry.Policy{MaxAttempts: groupPollAttempts, Interval: groupPollInterval},
	}
}

// Create binds groupID to roleIDs on the relationship. The parent must be
// active and every requested role approved; a 409 from the service becomes
// an Exists result, not an error.
func (m *Manager) Create(ctx context.Context, relationshipID, groupID string, roleIDs []string) (CreateResult, error) {
	auth, rel, err := m.activeRelationship(ctx, relationshipID)
	if err != nil {
		return CreateResult{}, err
	}
	if offending := rolesOutside(roleIDs, rel.RoleIDs()); len(offending) > 0 {
		return CreateResult{}, &RoleNotApprovedError{RelationshipID: relationshipID, Roles: offending}
	}
	body := directory.AccessAssignment{
		AccessContainer: directory.AccessContainer{
			AccessContainerID:   groupID,
			AccessContainerType: containerSecurityGroup,
		},
		AccessDetails: unifiedRoles(roleIDs),
	}
	created, err := m.dir.CreateAssignment(ctx, auth, relationshipID, body)
	if err != nil {
		if directory.IsConflict(err) {
			m.log.Infow("assignment already exists", "relationship", relationshipID, "group", groupID)
			if existing, ok := m.findByGroup(ctx, auth, relationshipID, groupID); ok {
				return CreateResult{Outcome: OutcomeExists, Assignment: existing}, nil
			}
			return CreateResult{Outcome: OutcomeExists, Assignment: body}, nil
		}
		return CreateResult{}, err
	}
	m.log.Infow("assignment created", "relationship", relationshipID, "group", groupID, "id", created.ID)
	return CreateResult{Outcome: OutcomeCreated, Assignment: created}, nil
}

// Update replaces the role set of an existing assignment. The etag is used
// as supplied; when empty the assignment's current one is fetched first.
func (m *Manager) Update(ctx context.Context, relationshipID, assignmentID string, roleIDs []string, etag string) (directory.AccessAssignment, error) {
	auth, rel, err := m.activeRelationship(ctx, relationshipID)
	if err != nil {
		return directory.AccessAssignment{}, err
	}
	if offending := rolesOutside(roleIDs, rel.RoleIDs()); len(offending) > 0 {
		return directory.AccessAssignment{}, &RoleNotApprovedError{RelationshipID: relationshipID, Roles: offending}
	}
	if etag == "" {
		current, gerr := m.dir.GetAssignment(ctx, auth, relationshipID, assignmentID)
		if gerr != nil {
			return directory.AccessAssignment{}, gerr
		}
		etag = current.Etag
	}
	return m.dir.UpdateAssignment(ctx, auth, relationshipID, assignmentID, etag, unifiedRoles(roleIDs))
}

// Remove detaches an assignment via conditional delete.
func (m *Manager) Remove(ctx context.Context, relationshipID, assignmentID, etag string) error {
	auth, _, err := m.activeRelationship(ctx, relationshipID)
	if err != nil {
		return err
	}
	if etag == "" {
		current, gerr := m.dir.GetAssignment(ctx, auth, relationshipID, assignmentID)
		if gerr != nil {
			return gerr
		}
		etag = current.Etag
	}
	if err := m.dir.DeleteAssignment(ctx, auth, relationshipID, assignmentID, etag); err != nil {
		return err
	}
	m.log.Infow("assignment removed", "relationship", relationshipID, "id", assignmentID)
	return nil
}

func (m *Manager) List(ctx context.Context, relationshipID string) ([]directory.AccessAssignment, error) {
	auth, err := m.tokens.Authorization(ctx, m.tenantID)
	if err != nil {
		return nil, err
	}
	return m.dir.ListAssignments(ctx, auth, relationshipID)
}

// activeRelationship guards every mutation: token, fetch, status check.
func (m *Manager) activeRelationship(ctx context.Context, relationshipID string) (string, directory.Relationship, error) {
	auth, err := m.tokens.Authorization(ctx, m.tenantID)
	if err != nil {
		return "", directory.Relationship{}, err
	}
	rel, err := m.dir.GetRelationship(ctx, auth, relationshipID)
	if err != nil {
		return "", directory.Relationship{}, err
	}
	if rel.Status != directory.StatusActive {
		return "", directory.Relationship{}, &NotActiveError{RelationshipID: relationshipID, Status: rel.Status}
	}
	return auth, rel, nil
}

func (m *Manager) findByGroup(ctx context.Context, auth, relationshipID, groupID string) (directory.AccessAssignment, bool) {
	all, err := m.dir.ListAssignments(ctx, auth, relationshipID)
	if err != nil {
		return directory.AccessAssignment{}, false
	}
	for _, a := range all {
		if a.SecurityGroupID() == groupID {
			return a, true
		}
	}
	return directory.AccessAssignment{}, false
}

func unifiedRoles(roleIDs []string) directory.AccessDetails {
	roles := make([]directory.UnifiedRole, 0, len(roleIDs))
	for _, id := range roleIDs {
		roles = append(roles, directory.UnifiedRole{RoleDefinitionID: id})
	}
	return directory.AccessDetails{UnifiedRoles: roles}
}

// rolesOutside returns requested roles missing from the approved set.
func rolesOutside(requested, approved []string) []string {
	set := make(map[string]struct{}, len(approved))
	for _, id := range approved {
		set[id] = struct{}{}
	}
	var out []string
	for _, id := range requested {
		if _, ok := set[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

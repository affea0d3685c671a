// internal/assignment/template.go
package assignment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gdap/internal/directory"
	"gdap/pkg/retry"
)

// Template is a named set of (group, roles) pairs applied in one batch.
type Template struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	Assignments []TemplateAssignment `yaml:"assignments"`
}

type TemplateAssignment struct {
	Group   GroupSpec `yaml:"group"`
	RoleIDs []string  `yaml:"roleIds"`
}

type GroupSpec struct {
	DisplayName  string `yaml:"displayName"`
	Description  string `yaml:"description,omitempty"`
	MailNickname string `yaml:"mailNickname,omitempty"`
}

type templatesFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadTemplates reads the templates YAML and indexes by name.
func LoadTemplates(path string) (map[string]Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assignment: read templates %s: %w", path, err)
	}
	var f templatesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("assignment: parse templates %s: %w", path, err)
	}
	out := make(map[string]Template, len(f.Templates))
	for _, t := range f.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("assignment: template without a name in %s", path)
		}
		out[t.Name] = t
	}
	return out, nil
}

// PairOutcome is the per-(group, roles) result of a template application.
type PairOutcome struct {
	Group        string `json:"group"`
	Outcome      string `json:"outcome"` // created | exists | error
	AssignmentID string `json:"assignmentId,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ApplyTemplate ensures each template group exists, then creates one
// assignment per pair. Individual pair failures are recorded and skipped;
// only the up-front relationship guard is fatal.
func (m *Manager) ApplyTemplate(ctx context.Context, relationshipID string, tpl Template) ([]PairOutcome, error) {
	if len(tpl.Assignments) == 0 {
		return nil, fmt.Errorf("assignment: template %q has no assignments", tpl.Name)
	}
	auth, rel, err := m.activeRelationship(ctx, relationshipID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]PairOutcome, 0, len(tpl.Assignments))
	for _, pair := range tpl.Assignments {
		po := PairOutcome{Group: pair.Group.DisplayName}
		if offending := rolesOutside(pair.RoleIDs, rel.RoleIDs()); len(offending) > 0 {
			po.Outcome = "error"
			po.Error = (&RoleNotApprovedError{RelationshipID: relationshipID, Roles: offending}).Error()
			outcomes = append(outcomes, po)
			continue
		}
		group, gerr := m.ensureGroup(ctx, auth, pair.Group)
		if gerr != nil {
			po.Outcome = "error"
			po.Error = gerr.Error()
			outcomes = append(outcomes, po)
			continue
		}
		res, cerr := m.createPair(ctx, auth, relationshipID, group.ID, pair.RoleIDs)
		if cerr != nil {
			po.Outcome = "error"
			po.Error = cerr.Error()
		} else {
			po.Outcome = string(res.Outcome)
			po.AssignmentID = res.Assignment.ID
		}
		outcomes = append(outcomes, po)
	}
	return outcomes, nil
}

// createPair is Create without the per-call relationship fetch: the template
// loop already validated the parent once.
func (m *Manager) createPair(ctx context.Context, auth, relationshipID, groupID string, roleIDs []string) (CreateResult, error) {
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
			if existing, ok := m.findByGroup(ctx, auth, relationshipID, groupID); ok {
				return CreateResult{Outcome: OutcomeExists, Assignment: existing}, nil
			}
			return CreateResult{Outcome: OutcomeExists, Assignment: body}, nil
		}
		return CreateResult{}, err
	}
	return CreateResult{Outcome: OutcomeCreated, Assignment: created}, nil
}

var errGroupNotVisible = errors.New("assignment: group not visible yet")

// ensureGroup finds the group by display name, creating it when absent and
// waiting for directory propagation before returning.
func (m *Manager) ensureGroup(ctx context.Context, auth string, spec GroupSpec) (directory.Group, error) {
	existing, found, err := m.dir.FindGroupByName(ctx, auth, spec.DisplayName)
	if err != nil {
		return directory.Group{}, err
	}
	if found {
		return existing, nil
	}

	nickname := spec.MailNickname
	if nickname == "" {
		nickname = strings.ToLower(strings.ReplaceAll(spec.DisplayName, " ", "-"))
	}
	created, err := m.dir.CreateGroup(ctx, auth, directory.Group{
		DisplayName:     spec.DisplayName,
		Description:     spec.Description,
		MailNickname:    nickname,
		MailEnabled:     false,
		SecurityEnabled: true,
		GroupTypes:      []string{},
	})
	if err != nil {
		return directory.Group{}, err
	}
	m.log.Infow("group created, waiting for propagation", "group", spec.DisplayName, "id", created.ID)

	var visible directory.Group
	perr := m.groupPoll.Do(ctx, func() error {
		g, ok, ferr := m.dir.FindGroupByName(ctx, auth, spec.DisplayName)
		if ferr != nil {
			return retry.Abort(ferr)
		}
		if !ok {
			return errGroupNotVisible
		}
		visible = g
		return nil
	})
	if perr != nil {
		if errors.Is(perr, errGroupNotVisible) {
			return directory.Group{}, &GroupTimeoutError{DisplayName: spec.DisplayName}
		}
		return directory.Group{}, perr
	}
	return visible, nil
}

// internal/relationship/service.go
package relationship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gdap/internal/directory"
	"gdap/pkg/retry"
)

// Termination polling: 5-second slices up to a 5-minute ceiling.
const (
	terminatePollInterval = 5 * time.Second
	terminatePollCeiling  = 5 * time.Minute
)

// Service drives the delegated-admin relationship lifecycle:
//
//	(create+lockForApproval) -> approvalPending -> active -> terminating -> terminated -> deleted
//
// approvalPending -> active happens on the customer's side and is only
// observed here. Every mutating call is conditional on the current etag.
type Service struct {
	log      *zap.SugaredLogger
	dir      *directory.Client
	tokens   directory.TokenSource
	tenantID string // provider tenant the lifecycle calls run against
	poll     retry.Policy
}

func NewService(log *zap.SugaredLogger, dir *directory.Client, tokens directory.TokenSource, providerTenantID string) *Service {
	return &Service{
		log:      log,
		dir:      dir,
		tokens:   tokens,
		tenantID: providerTenantID,
		poll:     retry.Policy{Interval: terminatePollInterval, Timeout: terminatePollCeiling},
	}
}

type CreateParams struct {
	DisplayName         string
	Duration            string // ISO 8601, e.g. P30D
	AutoExtendDuration  string
	CustomerTenantID    string
	CustomerDisplayName string
	RoleIDs             []string
}

// Create provisions a relationship and immediately locks it for the
// customer's approval; the returned relationship is approvalPending.
func (s *Service) Create(ctx context.Context, p CreateParams) (directory.Relationship, error) {
	auth, err := s.auth(ctx)
	if err != nil {
		return directory.Relationship{}, err
	}
	roles := make([]directory.UnifiedRole, 0, len(p.RoleIDs))
	for _, id := range p.RoleIDs {
		roles = append(roles, directory.UnifiedRole{RoleDefinitionID: id})
	}
	body := directory.Relationship{
		DisplayName:        p.DisplayName,
		Duration:           p.Duration,
		AutoExtendDuration: p.AutoExtendDuration,
		AccessDetails:      directory.AccessDetails{UnifiedRoles: roles},
	}
	if p.CustomerTenantID != "" {
		body.Customer = &directory.TenantInfo{TenantID: p.CustomerTenantID, DisplayName: p.CustomerDisplayName}
	}
	created, err := s.dir.CreateRelationship(ctx, auth, body)
	if err != nil {
		return directory.Relationship{}, err
	}
	s.log.Infow("relationship created", "id", created.ID, "status", created.Status)

	req := directory.RelationshipRequest{Action: directory.ActionLockForApproval}
	if _, err := s.dir.SubmitRelationshipRequest(ctx, auth, created.ID, req, created.Etag); err != nil {
		return created, fmt.Errorf("relationship %s created but lock-for-approval failed: %w", created.ID, err)
	}
	return s.dir.GetRelationship(ctx, auth, created.ID)
}

func (s *Service) Get(ctx context.Context, id string) (directory.Relationship, error) {
	auth, err := s.auth(ctx)
	if err != nil {
		return directory.Relationship{}, err
	}
	return s.dir.GetRelationship(ctx, auth, id)
}

func (s *Service) List(ctx context.Context) ([]directory.Relationship, error) {
	auth, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.dir.ListRelationships(ctx, auth)
}

// Reject declines an approvalPending relationship with a reason, moving it
// straight to terminated.
func (s *Service) Reject(ctx context.Context, id, reason, etag string) (directory.Relationship, error) {
	if reason == "" {
		return directory.Relationship{}, errors.New("relationship: reject requires a reason")
	}
	auth, err := s.auth(ctx)
	if err != nil {
		return directory.Relationship{}, err
	}
	current, err := s.dir.GetRelationship(ctx, auth, id)
	if err != nil {
		return directory.Relationship{}, err
	}
	if current.Status != directory.StatusApprovalPending {
		return directory.Relationship{}, &InvalidStateError{RelationshipID: id, Action: "reject", Status: current.Status}
	}
	if etag == "" {
		etag = current.Etag
	}
	req := directory.RelationshipRequest{Action: directory.ActionReject, Reason: reason}
	if _, err := s.dir.SubmitRelationshipRequest(ctx, auth, id, req, etag); err != nil {
		return directory.Relationship{}, err
	}
	return s.dir.GetRelationship(ctx, auth, id)
}

// Terminate ends an active relationship and waits for the remote system to
// settle. Calling it on an already-terminating relationship is safe: the
// action is not re-issued, only the polling resumes.
func (s *Service) Terminate(ctx context.Context, id, etag string) (directory.Relationship, error) {
	auth, err := s.auth(ctx)
	if err != nil {
		return directory.Relationship{}, err
	}
	current, err := s.dir.GetRelationship(ctx, auth, id)
	if err != nil {
		return directory.Relationship{}, err
	}
	switch current.Status {
	case directory.StatusTerminated:
		return current, nil
	case directory.StatusActive:
		if etag == "" {
			etag = current.Etag
		}
		req := directory.RelationshipRequest{Action: directory.ActionTerminate}
		if _, err := s.dir.SubmitRelationshipRequest(ctx, auth, id, req, etag); err != nil {
			return directory.Relationship{}, err
		}
		s.log.Infow("termination requested", "id", id)
	case directory.StatusTerminating:
		s.log.Infow("termination already in flight, resuming poll", "id", id)
	default:
		return directory.Relationship{}, &InvalidStateError{RelationshipID: id, Action: "terminate", Status: current.Status}
	}
	return s.waitTerminated(ctx, auth, id)
}

var errStillTerminating = errors.New("relationship: termination not settled")

func (s *Service) waitTerminated(ctx context.Context, auth, id string) (directory.Relationship, error) {
	var last directory.Relationship
	started := time.Now()
	err := s.poll.Do(ctx, func() error {
		rel, gerr := s.dir.GetRelationship(ctx, auth, id)
		if gerr != nil {
			// Remote failures abort the poll; the caller retries with a
			// fresh Terminate once the service is reachable again.
			return retry.Abort(gerr)
		}
		last = rel
		if rel.Status != directory.StatusTerminated {
			return errStillTerminating
		}
		return nil
	})
	if err == nil {
		return last, nil
	}
	if errors.Is(err, errStillTerminating) || errors.Is(err, context.DeadlineExceeded) {
		return last, &TerminationTimeoutError{RelationshipID: id, Waited: time.Since(started).Round(time.Second), LastStatus: last.Status}
	}
	return directory.Relationship{}, err
}

// Delete removes a relationship. Only terminated relationships are deletable:
// approvalPending ones expire remotely on their own, active ones must be
// terminated first.
func (s *Service) Delete(ctx context.Context, id, etag string) error {
	auth, err := s.auth(ctx)
	if err != nil {
		return err
	}
	current, err := s.dir.GetRelationship(ctx, auth, id)
	if err != nil {
		return err
	}
	switch current.Status {
	case directory.StatusTerminated:
	case directory.StatusApprovalPending:
		return &InvalidStateError{
			RelationshipID: id, Action: "delete", Status: current.Status,
			Hint: "pending relationships expire on their own and cannot be deleted",
		}
	default:
		return &InvalidStateError{
			RelationshipID: id, Action: "delete", Status: current.Status,
			Hint: "terminate the relationship first",
		}
	}
	if etag == "" {
		etag = current.Etag
	}
	if err := s.dir.DeleteRelationship(ctx, auth, id, etag); err != nil {
		return err
	}
	s.log.Infow("relationship deleted", "id", id)
	return nil
}

// Operations lists the asynchronous work the remote system has recorded for
// a relationship. Read-only; useful when a termination poll timed out.
func (s *Service) Operations(ctx context.Context, id string) ([]directory.Operation, error) {
	auth, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.dir.ListOperations(ctx, auth, id)
}

func (s *Service) auth(ctx context.Context) (string, error) {
	return s.tokens.Authorization(ctx, s.tenantID)
}

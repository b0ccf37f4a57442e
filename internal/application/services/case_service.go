package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/support"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/repositories"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/caching/stores"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/email"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/email/templates"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/messaging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/performance"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/security"
	"github.com/CircuitDesk/circuitdesk-go/pkg/config"
)

// CaseService orchestrates the support case collection. Mutations are applied
// to the in-memory working copy first, persisted remote-first, and always
// mirrored to the local snapshot, so a remote outage never blocks case work.
type CaseService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	store       *stores.CaseStore
	leads       *stores.LeadStore
	gateway     repositories.CaseGateway
	snapshots   repositories.SnapshotStore
	notifier    messaging.Notifier
	emailSvc    email.Service // nil when email notifications are not configured
}

// NewCaseService creates a new support case service
func NewCaseService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	store *stores.CaseStore,
	leads *stores.LeadStore,
	gateway repositories.CaseGateway,
	snapshots repositories.SnapshotStore,
	notifier messaging.Notifier,
	emailSvc email.Service,
) *CaseService {
	return &CaseService{
		logger:      logger,
		perfTracker: perfTracker,
		store:       store,
		leads:       leads,
		gateway:     gateway,
		snapshots:   snapshots,
		notifier:    notifier,
		emailSvc:    emailSvc,
	}
}

// LoadCases populates the in-memory collection from the remote store, falling
// back to the local snapshot when the remote path fails.
func (s *CaseService) LoadCases() error {
	marker := s.perfTracker.StartOperation("case:load")
	defer s.perfTracker.CompleteOperation(marker)

	cases, err := s.gateway.SelectAll(config.CaseLoadLimit)
	if err == nil {
		s.store.ReplaceAll(cases)
		s.mirror()
		s.logger.Cases().Info("Cases loaded from remote store", "count", len(cases))
		marker.AddMetadata("source", "remote")
		return nil
	}

	s.logger.LogFallback("case:load", err, nil)
	marker.AddMetadata("source", "snapshot")

	restored, found, snapErr := s.readSnapshot()
	if snapErr != nil {
		marker.SetError(snapErr)
		return snapErr
	}
	if !found {
		s.logger.Cases().Warn("No case snapshot available, starting empty")
		s.store.ReplaceAll(nil)
		return nil
	}

	s.store.ReplaceAll(restored)
	s.logger.Cases().Info("Cases restored from snapshot", "count", len(restored))
	return nil
}

// GetCases returns the full case collection.
func (s *CaseService) GetCases() []*support.Case {
	return s.store.All()
}

// GetCase returns the case with the given id, or nil.
func (s *CaseService) GetCase(id string) *support.Case {
	return s.store.Get(id)
}

// AddCase opens a new support case on behalf of the authenticated principal.
// Case creation is the one mutation that requires an identity: the creator is
// stamped onto the record. The id is assigned here, never by the store, so
// the record keeps the same identity on both persistence paths.
func (s *CaseService) AddCase(principal *user.Principal, c *support.Case) (*support.Case, repositories.Outcome, error) {
	marker := s.perfTracker.StartOperation("case:create")
	defer s.perfTracker.CompleteOperation(marker)

	outcome := repositories.Outcome{}

	if principal == nil {
		marker.SetSuccess(false)
		return nil, outcome, ErrUnauthorized
	}
	if err := s.validate(c); err != nil {
		marker.SetSuccess(false)
		return nil, outcome, err
	}

	c.ID = security.GenerateULID()
	c.CreatedBy = principal.ID
	c.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if c.Status == "" {
		c.Status = support.StatusPending
	}

	stored, err := s.gateway.Insert(c)
	if err != nil {
		s.logger.LogFallback("case:create", err, map[string]any{"id": c.ID, "leadCkt": c.LeadCkt})
		stored = c
	} else {
		outcome.PersistedRemotely = true
	}

	s.store.Append(stored)
	s.mirror()

	s.logger.Cases().Info("Case opened", "id", stored.ID, "leadCkt", stored.LeadCkt, "createdBy", principal.Username, "persistedRemotely", outcome.PersistedRemotely)
	s.notifier.Publish(messaging.EventCaseCreated, stored, outcome.PersistedRemotely)
	s.sendCaseOpenedEmail(stored, principal)

	return stored, outcome, nil
}

// UpdateCase replaces every mutable field of an existing case. The in-memory
// copy is updated optimistically; a remote failure downgrades the outcome
// instead of rolling back.
func (s *CaseService) UpdateCase(c *support.Case) (*support.Case, repositories.Outcome, error) {
	marker := s.perfTracker.StartOperation("case:update")
	defer s.perfTracker.CompleteOperation(marker)

	outcome := repositories.Outcome{}

	if err := s.validate(c); err != nil {
		marker.SetSuccess(false)
		return nil, outcome, err
	}

	existing := s.store.Get(c.ID)
	if existing == nil {
		marker.SetSuccess(false)
		return nil, outcome, fmt.Errorf("%w: case %s", ErrNotFound, c.ID)
	}

	// Creation stamps are immutable.
	c.CreatedBy = existing.CreatedBy
	c.CreatedAt = existing.CreatedAt

	s.store.Update(c)

	if err := s.gateway.Update(c); err != nil {
		s.logger.LogFallback("case:update", err, map[string]any{"id": c.ID})
	} else {
		outcome.PersistedRemotely = true
	}
	s.mirror()

	s.logger.Cases().Info("Case updated", "id", c.ID, "persistedRemotely", outcome.PersistedRemotely)
	s.notifier.Publish(messaging.EventCaseUpdated, c, outcome.PersistedRemotely)
	return c, outcome, nil
}

// UpdateCaseStatus changes only the workflow status of an existing case.
func (s *CaseService) UpdateCaseStatus(id string, status support.Status) (*support.Case, repositories.Outcome, error) {
	marker := s.perfTracker.StartOperation("case:status")
	defer s.perfTracker.CompleteOperation(marker)

	outcome := repositories.Outcome{}

	if !support.ValidStatus(status) {
		marker.SetSuccess(false)
		return nil, outcome, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if !s.store.UpdateStatus(id, status) {
		marker.SetSuccess(false)
		return nil, outcome, fmt.Errorf("%w: case %s", ErrNotFound, id)
	}

	if err := s.gateway.UpdateStatus(id, status); err != nil {
		s.logger.LogFallback("case:status", err, map[string]any{"id": id, "status": status})
	} else {
		outcome.PersistedRemotely = true
	}
	s.mirror()

	updated := s.store.Get(id)
	s.logger.Cases().Info("Case status changed", "id", id, "status", status, "persistedRemotely", outcome.PersistedRemotely)
	s.notifier.Publish(messaging.EventCaseUpdated, updated, outcome.PersistedRemotely)
	return updated, outcome, nil
}

// DeleteCase removes a case from the collection.
func (s *CaseService) DeleteCase(id string) (repositories.Outcome, error) {
	marker := s.perfTracker.StartOperation("case:delete")
	defer s.perfTracker.CompleteOperation(marker)

	outcome := repositories.Outcome{}

	if !s.store.Delete(id) {
		marker.SetSuccess(false)
		return outcome, fmt.Errorf("%w: case %s", ErrNotFound, id)
	}

	if err := s.gateway.Delete(id); err != nil {
		s.logger.LogFallback("case:delete", err, map[string]any{"id": id})
	} else {
		outcome.PersistedRemotely = true
	}
	s.mirror()

	s.logger.Cases().Info("Case deleted", "id", id, "persistedRemotely", outcome.PersistedRemotely)
	s.notifier.Publish(messaging.EventCaseDeleted, map[string]string{"id": id}, outcome.PersistedRemotely)
	return outcome, nil
}

// validate checks the case fields that every mutation must carry.
func (s *CaseService) validate(c *support.Case) error {
	if c == nil {
		return fmt.Errorf("%w: missing case body", ErrValidation)
	}
	if strings.TrimSpace(c.LeadCkt) == "" {
		return fmt.Errorf("%w: leadCkt is required", ErrValidation)
	}
	if c.Status != "" && !support.ValidStatus(c.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, c.Status)
	}
	if c.Connectivity != "" && !support.ValidConnectivity(c.Connectivity) {
		return fmt.Errorf("%w: unknown connectivity %q", ErrValidation, c.Connectivity)
	}
	return nil
}

// sendCaseOpenedEmail dispatches the optional case-opened notification on a
// background goroutine. Email failures are logged, never surfaced.
func (s *CaseService) sendCaseOpenedEmail(c *support.Case, principal *user.Principal) {
	if s.emailSvc == nil || config.CaseEmailTo == "" {
		return
	}

	props := templates.CaseOpenedEmailProps{
		CaseID:       c.ID,
		LeadCkt:      c.LeadCkt,
		IPAddress:    c.IPAddress,
		Connectivity: string(c.Connectivity),
		DueDate:      c.DueDate,
		Remarks:      c.CaseRemarks,
		CreatedBy:    principal.Username,
	}
	if lead := s.leads.GetByCkt(c.LeadCkt); lead != nil {
		props.CustName = lead.CustName
	}

	go func() {
		if err := s.emailSvc.SendCaseOpenedEmail(config.CaseEmailTo, props); err != nil {
			s.logger.Cases().Error("Failed to send case opened email", "error", err.Error(), "caseId", c.ID)
		}
	}()
}

// mirror writes the full collection to the local snapshot.
func (s *CaseService) mirror() {
	cases := s.store.All()
	data, err := json.Marshal(cases)
	if err != nil {
		s.logger.Snapshot().Error("Failed to serialize case snapshot", "error", err.Error())
		return
	}
	if err := s.snapshots.Write(repositories.SnapshotKeyCases, data); err != nil {
		s.logger.Snapshot().Error("Failed to write case snapshot", "error", err.Error())
	}
}

// readSnapshot loads and deserializes the case snapshot.
func (s *CaseService) readSnapshot() ([]*support.Case, bool, error) {
	data, found, err := s.snapshots.Read(repositories.SnapshotKeyCases)
	if err != nil || !found {
		return nil, found, err
	}

	var cases []*support.Case
	if err := json.Unmarshal(data, &cases); err != nil {
		s.logger.Snapshot().Error("Failed to deserialize case snapshot", "error", err.Error())
		return nil, true, err
	}
	return cases, true, nil
}

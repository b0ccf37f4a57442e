package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/directory"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/repositories"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/caching/stores"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/messaging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/performance"
	"github.com/CircuitDesk/circuitdesk-go/pkg/config"
)

// LeadService orchestrates the lead directory: the in-memory working copy,
// the remote store, and the local snapshot mirror. Reads are served from
// memory; mutations go remote-first and degrade to the snapshot path without
// surfacing an error to the caller.
type LeadService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	store       *stores.LeadStore
	gateway     repositories.LeadGateway
	snapshots   repositories.SnapshotStore
	notifier    messaging.Notifier
}

// NewLeadService creates a new lead directory service
func NewLeadService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	store *stores.LeadStore,
	gateway repositories.LeadGateway,
	snapshots repositories.SnapshotStore,
	notifier messaging.Notifier,
) *LeadService {
	return &LeadService{
		logger:      logger,
		perfTracker: perfTracker,
		store:       store,
		gateway:     gateway,
		snapshots:   snapshots,
		notifier:    notifier,
	}
}

// LoadLeads populates the in-memory collection from the remote store, falling
// back to the local snapshot when the remote path fails. An empty collection
// is a valid outcome; the application keeps running either way.
func (s *LeadService) LoadLeads() error {
	marker := s.perfTracker.StartOperation("lead:load")
	defer s.perfTracker.CompleteOperation(marker)

	leads, err := s.gateway.SelectAll(config.LeadLoadLimit)
	if err == nil {
		s.store.ReplaceAll(leads)
		s.mirror()
		s.logger.Directory().Info("Leads loaded from remote store", "count", len(leads))
		marker.AddMetadata("source", "remote")
		return nil
	}

	s.logger.LogFallback("lead:load", err, nil)
	marker.AddMetadata("source", "snapshot")

	restored, found, snapErr := s.readSnapshot()
	if snapErr != nil {
		marker.SetError(snapErr)
		return snapErr
	}
	if !found {
		s.logger.Directory().Warn("No lead snapshot available, starting empty")
		s.store.ReplaceAll(nil)
		return nil
	}

	s.store.ReplaceAll(restored)
	s.logger.Directory().Info("Leads restored from snapshot", "count", len(restored))
	return nil
}

// GetLeads returns the full lead collection in insertion order.
func (s *LeadService) GetLeads() []*directory.Lead {
	return s.store.All()
}

// GetLeadByCkt returns the lead with the exact circuit code, or nil when no
// such lead exists. Absence is not an error.
func (s *LeadService) GetLeadByCkt(ckt string) *directory.Lead {
	marker := s.perfTracker.StartOperation("lead:get")
	defer s.perfTracker.CompleteOperation(marker)

	return s.store.GetByCkt(ckt)
}

// AddLead appends a new lead to the directory. The serial number is assigned
// from the current collection size, and the circuit code must be unique. The
// returned outcome reports which persistence path held the write.
func (s *LeadService) AddLead(lead *directory.Lead) (*directory.Lead, repositories.Outcome, error) {
	marker := s.perfTracker.StartOperation("lead:create")
	defer s.perfTracker.CompleteOperation(marker)

	outcome := repositories.Outcome{}

	if lead == nil || strings.TrimSpace(lead.Ckt) == "" {
		marker.SetSuccess(false)
		return nil, outcome, fmt.Errorf("%w: circuit code is required", ErrValidation)
	}
	if existing := s.store.GetByCkt(lead.Ckt); existing != nil {
		marker.SetSuccess(false)
		return nil, outcome, fmt.Errorf("%w: circuit %s", ErrDuplicate, lead.Ckt)
	}

	lead.SrNo = strconv.Itoa(s.store.Count() + 1)

	stored, err := s.gateway.Insert(lead)
	if err != nil {
		s.logger.LogFallback("lead:create", err, map[string]any{"ckt": lead.Ckt})
		stored = lead
	} else {
		outcome.PersistedRemotely = true
	}

	s.store.Append(stored)
	s.mirror()

	s.logger.Directory().Info("Lead added", "ckt", stored.Ckt, "srNo", stored.SrNo, "persistedRemotely", outcome.PersistedRemotely)
	s.notifier.Publish(messaging.EventLeadAdded, stored, outcome.PersistedRemotely)
	return stored, outcome, nil
}

// SearchLeads finds leads whose circuit code, customer name, or usable IP
// address contains the query text, case-insensitively. Results are capped,
// with any exact circuit match placed first. An empty query returns an empty
// result without touching any store.
//
// Three tiers serve the search: the in-memory scan, the remote store when
// that scan finds nothing, and finally the local snapshot.
func (s *LeadService) SearchLeads(query string) ([]*directory.Lead, error) {
	marker := s.perfTracker.StartOperation("lead:search")
	defer s.perfTracker.CompleteOperation(marker)

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []*directory.Lead{}, nil
	}

	needle := strings.ToLower(trimmed)
	marker.AddMetadata("query", needle)

	// Tier 1: the in-memory working copy. Zero hits fall through so leads
	// beyond the bounded warm load stay findable.
	if results := scanLeads(s.store.All(), needle); len(results) > 0 {
		marker.AddMetadata("tier", "memory")
		s.logger.Search().Info("Lead search served from memory", "query", needle, "count", len(results))
		return results, nil
	}

	// Tier 2: the remote store.
	remote, err := s.gateway.Search(needle, config.SearchResultLimit)
	if err == nil {
		marker.AddMetadata("tier", "remote")
		results := orderExactFirst(remote, needle, config.SearchResultLimit)
		s.logger.Search().Info("Lead search served from remote store", "query", needle, "count", len(results))
		return results, nil
	}
	s.logger.LogFallback("lead:search", err, map[string]any{"query": needle})

	// Tier 3: the local snapshot, best effort. Matching is deliberately
	// weaker here: plain substring over circuit code and customer name,
	// with no prefix handling and no exact-match promotion.
	marker.AddMetadata("tier", "snapshot")
	restored, found, snapErr := s.readSnapshot()
	if snapErr != nil || !found {
		s.logger.Search().Warn("Lead search found no usable source", "query", needle)
		return []*directory.Lead{}, nil
	}

	results := weakScanLeads(restored, needle)
	s.logger.Search().Info("Lead search served from snapshot", "query", needle, "count", len(results))
	return results, nil
}

// mirror writes the full collection to the local snapshot. Failures are
// logged and swallowed: mirroring must never surface to the caller.
func (s *LeadService) mirror() {
	leads := s.store.All()
	data, err := json.Marshal(leads)
	if err != nil {
		s.logger.Snapshot().Error("Failed to serialize lead snapshot", "error", err.Error())
		return
	}
	if err := s.snapshots.Write(repositories.SnapshotKeyLeads, data); err != nil {
		s.logger.Snapshot().Error("Failed to write lead snapshot", "error", err.Error())
	}
}

// readSnapshot loads and deserializes the lead snapshot.
func (s *LeadService) readSnapshot() ([]*directory.Lead, bool, error) {
	data, found, err := s.snapshots.Read(repositories.SnapshotKeyLeads)
	if err != nil || !found {
		return nil, found, err
	}

	var leads []*directory.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		s.logger.Snapshot().Error("Failed to deserialize lead snapshot", "error", err.Error())
		return nil, true, err
	}
	return leads, true, nil
}

// scanLeads applies the substring match over a collection, prepends any exact
// circuit match, and caps the result.
func scanLeads(leads []*directory.Lead, needle string) []*directory.Lead {
	matched := make([]*directory.Lead, 0)
	for _, lead := range leads {
		if leadMatches(lead, needle) {
			matched = append(matched, lead)
		}
	}
	return orderExactFirst(matched, needle, config.SearchResultLimit)
}

// weakScanLeads is the last-resort matcher used against snapshot data: a
// plain substring test over circuit code and customer name only.
func weakScanLeads(leads []*directory.Lead, needle string) []*directory.Lead {
	matched := make([]*directory.Lead, 0)
	for _, lead := range leads {
		if strings.Contains(strings.ToLower(lead.Ckt), needle) ||
			strings.Contains(strings.ToLower(lead.CustName), needle) {
			matched = append(matched, lead)
			if len(matched) == config.SearchResultLimit {
				break
			}
		}
	}
	return matched
}

// leadMatches reports whether a lead matches the lowercase needle. Circuit
// codes are compared with and without their "ckt" prefix on both sides, so
// users can type either form against either stored form. Missing fields
// compare as empty strings.
func leadMatches(lead *directory.Lead, needle string) bool {
	ckt := strings.ToLower(lead.Ckt)
	if strings.Contains(ckt, needle) {
		return true
	}
	if stripped := strings.TrimPrefix(needle, "ckt"); stripped != needle && strings.Contains(ckt, stripped) {
		return true
	}
	if strings.Contains(strings.ToLower(lead.CustName), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(lead.UsableIPAddress), needle)
}

// cktEquals reports whether a circuit code equals the needle exactly, with or
// without the "ckt" prefix on either side.
func cktEquals(ckt, needle string) bool {
	if ckt == needle {
		return true
	}
	return strings.TrimPrefix(ckt, "ckt") == strings.TrimPrefix(needle, "ckt")
}

// orderExactFirst moves an exact circuit-code match to the front and truncates
// the collection to limit.
func orderExactFirst(leads []*directory.Lead, needle string, limit int) []*directory.Lead {
	ordered := make([]*directory.Lead, 0, len(leads))
	var exact *directory.Lead
	for _, lead := range leads {
		if exact == nil && cktEquals(strings.ToLower(lead.Ckt), needle) {
			exact = lead
			continue
		}
		ordered = append(ordered, lead)
	}
	if exact != nil {
		ordered = append([]*directory.Lead{exact}, ordered...)
	}
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered
}

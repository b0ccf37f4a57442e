// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/CircuitDesk/circuitdesk-go/internal/application/services"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/caching/stores"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/email"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/messaging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/performance"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/persistence/database"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/persistence/remote"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/persistence/snapshot"
	"github.com/CircuitDesk/circuitdesk-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Observability
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker

	// Persistence
	RemoteDB      *database.DB // nil when running snapshot-only
	SnapshotStore *snapshot.Store

	// In-memory collections
	LeadStore *stores.LeadStore
	CaseStore *stores.CaseStore
	UserStore *stores.UserStore

	// Real-time events
	Broadcaster *messaging.EventBroadcaster

	// Application services
	LeadService   *services.LeadService
	CaseService   *services.CaseService
	AuthService   *services.AuthService
	RefreshWorker *services.RefreshWorker
}

// NewContainer creates and wires all singleton services
func NewContainer() (*Container, error) {
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize channeled logger: %w", err)
	}

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	// Remote store is best-effort: a connection failure degrades to the
	// snapshot path rather than aborting startup.
	remoteDB, err := database.ConnectRemote(logger)
	if err != nil {
		logger.Startup().Warn("Remote database unreachable, continuing with snapshot only", "error", err.Error())
		remoteDB = nil
	}
	if remoteDB != nil {
		if err := database.EnsureSchema(remoteDB); err != nil {
			logger.Startup().Warn("Remote schema bootstrap failed, continuing with snapshot only", "error", err.Error())
			remoteDB.Close()
			remoteDB = nil
		}
	}

	snapshotStore, err := snapshot.NewStore(config.SnapshotDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	leadStore := stores.NewLeadStore()
	caseStore := stores.NewCaseStore()
	userStore := stores.NewUserStore()

	broadcaster := messaging.NewEventBroadcaster(logger)

	// Email notifications are optional; without an API key the case flow
	// simply skips them.
	var emailSvc email.Service
	if config.ResendAPIKey != "" {
		emailSvc, err = email.NewService()
		if err != nil {
			logger.Startup().Warn("Email service unavailable", "error", err.Error())
			emailSvc = nil
		}
	}

	leadGateway := remote.NewSQLLeadGateway(remoteDB, logger)
	caseGateway := remote.NewSQLCaseGateway(remoteDB, logger)
	userGateway := remote.NewSQLUserGateway(remoteDB, logger)

	leadService := services.NewLeadService(logger, perfTracker, leadStore, leadGateway, snapshotStore, broadcaster)
	caseService := services.NewCaseService(logger, perfTracker, caseStore, leadStore, caseGateway, snapshotStore, broadcaster, emailSvc)
	authService := services.NewAuthService(logger, perfTracker, userStore, userGateway, snapshotStore)
	refreshWorker := services.NewRefreshWorker(logger, leadService, caseService, authService)

	return &Container{
		Logger:        logger,
		PerfTracker:   perfTracker,
		RemoteDB:      remoteDB,
		SnapshotStore: snapshotStore,
		LeadStore:     leadStore,
		CaseStore:     caseStore,
		UserStore:     userStore,
		Broadcaster:   broadcaster,
		LeadService:   leadService,
		CaseService:   caseService,
		AuthService:   authService,
		RefreshWorker: refreshWorker,
	}, nil
}

// Close releases the container's infrastructure resources.
func (c *Container) Close() error {
	var firstErr error

	if c.RemoteDB != nil {
		if err := c.RemoteDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.SnapshotStore != nil {
		if err := c.SnapshotStore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
	return firstErr
}

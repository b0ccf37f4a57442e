package services

import (
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/pkg/config"
)

// RefreshWorker periodically reloads the collections from the remote store so
// a node that served writes from the snapshot path converges once the remote
// store is reachable again. Disabled when REFRESH_INTERVAL_MINUTES is 0.
type RefreshWorker struct {
	logger  *logging.ChanneledLogger
	leadSvc *LeadService
	caseSvc *CaseService
	authSvc *AuthService
	stop    chan struct{}
	done    chan struct{}
}

// NewRefreshWorker creates a new refresh worker.
func NewRefreshWorker(logger *logging.ChanneledLogger, leadSvc *LeadService, caseSvc *CaseService, authSvc *AuthService) *RefreshWorker {
	return &RefreshWorker{
		logger:  logger,
		leadSvc: leadSvc,
		caseSvc: caseSvc,
		authSvc: authSvc,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the refresh loop on a background goroutine. It returns
// immediately; when refresh is disabled it is a no-op.
func (w *RefreshWorker) Start() {
	if config.RefreshInterval <= 0 {
		w.logger.System().Info("Collection refresh disabled")
		close(w.done)
		return
	}

	w.logger.System().Info("Collection refresh worker starting", "interval", config.RefreshInterval)

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(config.RefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-w.stop:
				w.logger.System().Info("Collection refresh worker stopping")
				return
			case <-ticker.C:
				w.refresh()
			}
		}
	}()
}

// refresh reloads every collection, logging failures without interrupting the
// loop.
func (w *RefreshWorker) refresh() {
	start := time.Now()
	w.logger.System().Debug("Collection refresh starting")

	if err := w.leadSvc.LoadLeads(); err != nil {
		w.logger.System().Error("Lead refresh failed", "error", err.Error())
	}
	if err := w.caseSvc.LoadCases(); err != nil {
		w.logger.System().Error("Case refresh failed", "error", err.Error())
	}
	if err := w.authSvc.LoadUsers(); err != nil {
		w.logger.System().Error("User refresh failed", "error", err.Error())
	}

	w.logger.System().Info("Collection refresh completed", "duration", time.Since(start))
}

// Stop signals the loop to exit and waits for it to finish.
func (w *RefreshWorker) Stop() {
	close(w.stop)
	<-w.done
}

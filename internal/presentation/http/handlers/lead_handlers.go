package handlers

import (
	"net/http"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/application/services"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/directory"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// LeadHandlers contains all lead directory HTTP handlers
type LeadHandlers struct {
	leadService *services.LeadService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewLeadHandlers creates lead handlers with injected dependencies
func NewLeadHandlers(leadService *services.LeadService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *LeadHandlers {
	return &LeadHandlers{
		leadService: leadService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetLeads handles GET /api/v1/leads - returns the full lead directory
func (h *LeadHandlers) GetLeads(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_leads_request")
	defer marker.Complete()

	leads := h.leadService.GetLeads()

	marker.SetSuccess(true)
	marker.AddMetadata("leadCount", len(leads))
	h.logger.Directory().Debug("Served lead directory", "count", len(leads), "duration", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"count": len(leads),
	})
}

// GetLeadSearch handles GET /api/v1/leads/search?query= - tiered substring search
func (h *LeadHandlers) GetLeadSearch(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("lead:search_request")
	defer marker.Complete()

	query := c.Query("query")
	results, err := h.leadService.SearchLeads(query)
	if err != nil {
		marker.SetSuccess(false)
		respondServiceError(c, err)
		return
	}

	marker.SetSuccess(true)
	marker.AddMetadata("resultCount", len(results))
	h.logger.Search().Info("Lead search served", "query", query, "results", len(results), "duration", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"leads": results,
		"count": len(results),
	})
}

// GetLeadByCkt handles GET /api/v1/leads/:ckt - single lead lookup
func (h *LeadHandlers) GetLeadByCkt(c *gin.Context) {
	marker := h.perfTracker.StartOperation("lead:lookup_request")
	defer marker.Complete()

	ckt := c.Param("ckt")
	lead := h.leadService.GetLeadByCkt(ckt)
	if lead == nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

// PostLead handles POST /api/v1/leads - adds a lead to the directory
func (h *LeadHandlers) PostLead(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("lead:create_request")
	defer marker.Complete()

	var lead directory.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		h.logger.Directory().Error("Lead request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	stored, outcome, err := h.leadService.AddLead(&lead)
	if err != nil {
		marker.SetSuccess(false)
		respondServiceError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Directory().Info("Lead created", "ckt", stored.Ckt, "persistedRemotely", outcome.PersistedRemotely, "duration", time.Since(start))

	c.JSON(http.StatusCreated, gin.H{
		"lead":              stored,
		"persistedRemotely": outcome.PersistedRemotely,
	})
}

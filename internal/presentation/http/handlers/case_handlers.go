package handlers

import (
	"net/http"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/application/services"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/support"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/performance"
	"github.com/CircuitDesk/circuitdesk-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// CaseHandlers contains all support case HTTP handlers
type CaseHandlers struct {
	caseService *services.CaseService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCaseHandlers creates case handlers with injected dependencies
func NewCaseHandlers(caseService *services.CaseService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CaseHandlers {
	return &CaseHandlers{
		caseService: caseService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// StatusChangeRequest represents the body for status-only updates
type StatusChangeRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetCases handles GET /api/v1/cases - returns all support cases
func (h *CaseHandlers) GetCases(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_cases_request")
	defer marker.Complete()

	cases := h.caseService.GetCases()

	marker.SetSuccess(true)
	marker.AddMetadata("caseCount", len(cases))

	c.JSON(http.StatusOK, gin.H{
		"cases": cases,
		"count": len(cases),
	})
}

// PostCase handles POST /api/v1/cases - opens a new support case
func (h *CaseHandlers) PostCase(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("case:create_request")
	defer marker.Complete()

	principal, _ := middleware.GetPrincipal(c)

	var newCase support.Case
	if err := c.ShouldBindJSON(&newCase); err != nil {
		h.logger.Cases().Error("Case request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	stored, outcome, err := h.caseService.AddCase(principal, &newCase)
	if err != nil {
		marker.SetSuccess(false)
		respondServiceError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Cases().Info("Case created", "caseId", stored.ID, "leadCkt", stored.LeadCkt, "persistedRemotely", outcome.PersistedRemotely, "duration", time.Since(start))

	c.JSON(http.StatusCreated, gin.H{
		"case":              stored,
		"persistedRemotely": outcome.PersistedRemotely,
	})
}

// PutCase handles PUT /api/v1/cases/:id - full update of an existing case
func (h *CaseHandlers) PutCase(c *gin.Context) {
	marker := h.perfTracker.StartOperation("case:update_request")
	defer marker.Complete()

	var updated support.Case
	if err := c.ShouldBindJSON(&updated); err != nil {
		h.logger.Cases().Error("Case update JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	// The path parameter is authoritative for identity.
	updated.ID = c.Param("id")

	stored, outcome, err := h.caseService.UpdateCase(&updated)
	if err != nil {
		marker.SetSuccess(false)
		respondServiceError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"case":              stored,
		"persistedRemotely": outcome.PersistedRemotely,
	})
}

// PatchCaseStatus handles PATCH /api/v1/cases/:id/status - status-only transition
func (h *CaseHandlers) PatchCaseStatus(c *gin.Context) {
	marker := h.perfTracker.StartOperation("case:status_request")
	defer marker.Complete()

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Cases().Error("Status change JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	stored, outcome, err := h.caseService.UpdateCaseStatus(c.Param("id"), support.Status(req.Status))
	if err != nil {
		marker.SetSuccess(false)
		respondServiceError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Cases().Info("Case status changed", "caseId", stored.ID, "status", stored.Status, "persistedRemotely", outcome.PersistedRemotely)

	c.JSON(http.StatusOK, gin.H{
		"case":              stored,
		"persistedRemotely": outcome.PersistedRemotely,
	})
}

// DeleteCase handles DELETE /api/v1/cases/:id - removes a case
func (h *CaseHandlers) DeleteCase(c *gin.Context) {
	marker := h.perfTracker.StartOperation("case:delete_request")
	defer marker.Complete()

	id := c.Param("id")
	outcome, err := h.caseService.DeleteCase(id)
	if err != nil {
		marker.SetSuccess(false)
		respondServiceError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Cases().Info("Case deleted", "caseId", id, "persistedRemotely", outcome.PersistedRemotely)

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"persistedRemotely": outcome.PersistedRemotely,
	})
}

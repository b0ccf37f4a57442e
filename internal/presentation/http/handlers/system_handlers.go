package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/application/container"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// SystemHandlers exposes operational status endpoints
type SystemHandlers struct {
	container *container.Container
}

// NewSystemHandlers creates system handlers backed by the application container
func NewSystemHandlers(c *container.Container) *SystemHandlers {
	return &SystemHandlers{container: c}
}

// GetDatabaseStatus handles GET /api/v1/db/status - persistence and store health
func (h *SystemHandlers) GetDatabaseStatus(c *gin.Context) {
	remoteConnected := false
	if h.container.RemoteDB != nil {
		remoteConnected = h.container.RemoteDB.Ping() == nil
	}

	c.JSON(http.StatusOK, gin.H{
		"remote": gin.H{
			"configured": h.container.RemoteDB != nil,
			"connected":  remoteConnected,
		},
		"stores": gin.H{
			"leads": gin.H{
				"count":       h.container.LeadStore.Count(),
				"lastUpdated": formatStoreTime(h.container.LeadStore.LastUpdated()),
			},
			"cases": gin.H{
				"count":       h.container.CaseStore.Count(),
				"lastUpdated": formatStoreTime(h.container.CaseStore.LastUpdated()),
			},
			"users": gin.H{
				"count":       h.container.UserStore.Count(),
				"lastUpdated": formatStoreTime(h.container.UserStore.LastUpdated()),
			},
		},
		"streamClients": h.container.Broadcaster.ClientCount(),
	})
}

// GetPerformanceStats handles GET /api/v1/system/performance - tracker summary
func (h *SystemHandlers) GetPerformanceStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.container.PerfTracker.GetOverallStats())
}

// GetLogLevels handles GET /api/v1/system/logs/levels - current per-channel levels
func (h *SystemHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.container.Logger.GetChannelLevels())
}

// SetLogLevel handles POST /api/v1/system/logs/levels - adjusts one channel at runtime
func (h *SystemHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var level slog.Level
	switch req.Level {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log level specified"})
		return
	}

	if err := h.container.Logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to set log level", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": fmt.Sprintf("Log level for channel '%s' set to '%s'", req.Channel, req.Level)})
}

func formatStoreTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

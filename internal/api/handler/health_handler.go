package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	svc DatasetService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(svc DatasetService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Datasets int    `json:"datasets"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{
		Status:   "healthy",
		Datasets: len(h.svc.Datasets()),
	})
}

// Ready handles GET /ready. The service is ready once a dataset is trained.
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.svc.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "no dataset trained"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

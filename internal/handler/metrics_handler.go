package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/diary-api/internal/service"
	"github.com/classdesk/diary-api/pkg/response"
)

// MetricsHandler serves liveness and Prometheus endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Health reports process liveness.
func (h *MetricsHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Prometheus exposes the metrics registry in text exposition format.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardfeed/backend/internal/logger"
)

// Health reports store and cache connectivity. Only a store failure makes
// the service unhealthy; redis is optional.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "store": "ok", "cache": "disabled"}

	if err := h.store.Ping(ctx); err != nil {
		logger.WarnWithFields("Health check: store unreachable", err)
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["store"] = "unreachable"
	}

	if h.redis != nil {
		body["cache"] = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			logger.WarnWithFields("Health check: redis unreachable", err)
			body["cache"] = "unreachable"
		}
	}

	c.JSON(status, body)
}

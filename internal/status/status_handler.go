// Package status exposes liveness and readiness probes. Readiness checks the
// database and the cache; the cache being down degrades latency, not
// correctness, so it is reported but does not fail the probe.
package status

import (
	"database/sql"
	"net/http"
	"time"

	"leavedesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	db  *sql.DB
	rdb *redis.Client
}

func NewHandler(db *sql.DB, rdb *redis.Client) *Handler {
	return &Handler{db: db, rdb: rdb}
}

func (h *Handler) Live(c *gin.Context) {
	response.SuccessMessage(c, http.StatusOK, "ok", nil)
}

func (h *Handler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{
		"database": "ok",
		"cache":    "ok",
		"time":     time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "database unreachable")
		return
	}

	if err := h.rdb.Ping(ctx).Err(); err != nil {
		checks["cache"] = err.Error()
	}

	response.Success(c, http.StatusOK, checks)
}

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	status := r.Group("/status")
	{
		status.GET("/live", handler.Live)
		status.GET("/ready", handler.Ready)
	}
}

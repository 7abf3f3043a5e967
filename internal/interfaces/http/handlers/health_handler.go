package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/pkg/redis"
)

type HealthHandler struct {
	db        *gorm.DB
	startedAt time.Time
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startedAt: time.Now().UTC(),
	}
}

// Health reports service status plus database and cache connectivity.
// Redis being down degrades the report but the service stays "ok": the
// API works without its cache.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK

	dbStatus := "ok"
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			dbStatus = "unreachable"
			status = http.StatusServiceUnavailable
		}
	} else {
		dbStatus = "not configured"
		status = http.StatusServiceUnavailable
	}

	cacheStatus := "ok"
	if err := redis.Ping(ctx); err != nil {
		cacheStatus = "unavailable"
	}

	c.JSON(status, gin.H{
		"status":   statusWord(status),
		"database": dbStatus,
		"cache":    cacheStatus,
		"uptime":   time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

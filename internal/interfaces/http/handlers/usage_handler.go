package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/repositories"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/interfaces/http/response"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/usecases"
)

type UsageHandler struct {
	usageLogs repositories.UsageLogRepository
}

func NewUsageHandler(usageLogs repositories.UsageLogRepository) *UsageHandler {
	return &UsageHandler{usageLogs: usageLogs}
}

// Stats returns aggregate usage for the admin dashboard
func (h *UsageHandler) Stats(c *gin.Context) {
	stats, err := h.usageLogs.Stats(c.Request.Context(), usecases.Day(time.Now().UTC()))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/interfaces/http/handlers"
)

type usageLogRepoStub struct {
	stats *entities.UsageStats
	err   error
}

func (s *usageLogRepoStub) Append(context.Context, *entities.UsageLog) error { return nil }

func (s *usageLogRepoStub) Stats(context.Context, string) (*entities.UsageStats, error) {
	return s.stats, s.err
}

func (s *usageLogRepoStub) PurgeBefore(context.Context, time.Time) (int64, error) { return 0, nil }

func usageRouter(stub *usageLogRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/admin/usage", handlers.NewUsageHandler(stub).Stats)
	return r
}

func TestUsageHandler_Stats(t *testing.T) {
	stub := &usageLogRepoStub{stats: &entities.UsageStats{
		TotalRequests: 120,
		TodayRequests: 12,
		ByCompany:     map[string]int64{"AgriCo": 100, "TerraFarm": 20},
		ByEndpoint:    map[string]int64{"/api/v1/predict": 120},
	}}
	r := usageRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/usage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalRequests":120`)
	assert.Contains(t, w.Body.String(), `"AgriCo":100`)
}

func TestUsageHandler_StatsError(t *testing.T) {
	r := usageRouter(&usageLogRepoStub{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/usage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

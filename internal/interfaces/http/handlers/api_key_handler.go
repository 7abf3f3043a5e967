package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/interfaces/http/response"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/usecases"
)

type ApiKeyHandler struct {
	apiKeyUsecase *usecases.ApiKeyUsecase
}

func NewApiKeyHandler(apiKeyUsecase *usecases.ApiKeyUsecase) *ApiKeyHandler {
	return &ApiKeyHandler{
		apiKeyUsecase: apiKeyUsecase,
	}
}

// CreateApiKey mints a new partner key. The raw secret is only present in
// this response.
func (h *ApiKeyHandler) CreateApiKey(c *gin.Context) {
	var input entities.CreateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.apiKeyUsecase.CreateApiKey(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// ListApiKeys lists all issued keys with masked secrets
func (h *ApiKeyHandler) ListApiKeys(c *gin.Context) {
	apiKeys, err := h.apiKeyUsecase.ListApiKeys(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"apiKeys": apiKeys, "count": len(apiKeys)})
}

// RevokeApiKey revokes a key by ID
func (h *ApiKeyHandler) RevokeApiKey(c *gin.Context) {
	id, ok := parseKeyID(c)
	if !ok {
		return
	}

	if err := h.apiKeyUsecase.RevokeApiKey(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "API key revoked"})
}

// SetQuota changes a key's daily request quota
func (h *ApiKeyHandler) SetQuota(c *gin.Context) {
	id, ok := parseKeyID(c)
	if !ok {
		return
	}

	var input entities.UpdateQuotaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.apiKeyUsecase.SetQuota(c.Request.Context(), id, input.QuotaPerDay); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "quota updated"})
}

// SetExpiry changes or clears a key's expiry
func (h *ApiKeyHandler) SetExpiry(c *gin.Context) {
	id, ok := parseKeyID(c)
	if !ok {
		return
	}

	var input entities.UpdateExpiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.apiKeyUsecase.SetExpiry(c.Request.Context(), id, input.ExpiresAt); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "expiry updated"})
}

// Usage returns the per-day usage and overage report for a key
func (h *ApiKeyHandler) Usage(c *gin.Context) {
	id, ok := parseKeyID(c)
	if !ok {
		return
	}

	report, err := h.apiKeyUsecase.UsageReport(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"apiKeyId": id, "usage": report})
}

func parseKeyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid API key ID"))
		return uuid.Nil, false
	}
	return id, true
}

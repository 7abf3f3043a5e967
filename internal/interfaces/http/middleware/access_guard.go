package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/repositories"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/interfaces/http/response"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/pkg/logger"
)

// ApiKeyContextKey is where the guard stores the authorized key record.
const ApiKeyContextKey = "api_key"

// Authorizer evaluates one request credential. Implemented by
// usecases.ApiKeyUsecase.
type Authorizer interface {
	Authorize(ctx context.Context, rawKey string, now time.Time) (*entities.ApiKey, error)
}

// AccessGuardMiddleware authenticates the caller's API key and enforces
// quota before the handler runs. Every decision, accepted or rejected, is
// appended to the usage log.
func AccessGuardMiddleware(authorizer Authorizer, usageLogs repositories.UsageLogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rawKey := extractApiKey(c)

		key, err := authorizer.Authorize(ctx, rawKey, time.Now().UTC())
		if err != nil {
			reason := rejectionReason(err)
			logUsage(ctx, usageLogs, key, c.FullPath(), statusFor(err), reason)
			logger.Warn(ctx, "request rejected",
				zap.String("reason", reason),
				zap.String("endpoint", c.FullPath()))

			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ApiKeyContextKey, key)
		c.Next()

		logUsage(ctx, usageLogs, key, c.FullPath(), c.Writer.Status(), "")
	}
}

// AuthorizedKey returns the key record the guard attached to this request.
func AuthorizedKey(c *gin.Context) (*entities.ApiKey, bool) {
	value, exists := c.Get(ApiKeyContextKey)
	if !exists {
		return nil, false
	}
	key, ok := value.(*entities.ApiKey)
	return key, ok
}

func extractApiKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

func rejectionReason(err error) string {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return domainerrors.ReasonInternal
}

func statusFor(err error) int {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 500
}

func logUsage(ctx context.Context, usageLogs repositories.UsageLogRepository, key *entities.ApiKey, endpoint string, status int, reason string) {
	if usageLogs == nil {
		return
	}

	entry := &entities.UsageLog{
		Endpoint:   endpoint,
		StatusCode: status,
		Reason:     reason,
	}
	if key != nil {
		id := key.ID
		entry.ApiKeyID = &id
		entry.Company = key.CompanyName
	}

	// Best effort; the request outcome never depends on the audit write.
	if err := usageLogs.Append(ctx, entry); err != nil {
		logger.Error(ctx, "failed to append usage log", zap.Error(err))
	}
}

package response

import (
	"github.com/gin-gonic/gin"

	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps an error onto the wire shape. Anything that is not an AppError
// becomes a 500 with a generic message so internals never leak to callers.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if e, ok := err.(*domainerrors.AppError); ok {
		appErr = e
	} else {
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Code, gin.H{
		"reason":  appErr.Reason,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	})
}

// ErrorWithReason sends an error response with an explicit status and reason
func ErrorWithReason(c *gin.Context, status int, reason string, message string) {
	c.JSON(status, gin.H{
		"reason":  reason,
		"message": message,
	})
}

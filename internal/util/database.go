package util

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/logger"
)

// HandleStoreError maps a service or storage error to a response.
// Returns true if the error was handled (and response was sent), false otherwise
func HandleStoreError(c *gin.Context, err error, resourceName string) bool {
	if err == nil {
		return false
	}

	apiErr := apierrors.FromError(err, resourceName)
	if apiErr.Status >= 500 {
		logger.ErrorWithFields("Request failed", err,
			logger.WithRequestID(RequestID(c)),
			logger.WithUserID(c.GetString(ContextUserIDKey)),
		)
	}
	RespondWithAPIError(c, apiErr)
	return true
}

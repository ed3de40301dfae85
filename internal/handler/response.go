package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pomodoro/timer/internal/errors"
)

// WriteError renders err as {"error":{code,message,details}}. Errors that are
// not *apperrors.Error become a generic 500.
func WriteError(c *gin.Context, err error) {
	apiErr, ok := apperrors.As(err)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "internal_error",
				"message": "internal server error",
			},
		})
		return
	}

	errorBody := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		errorBody["details"] = apiErr.Details
	}

	c.AbortWithStatusJSON(apiErr.Status(), gin.H{
		"error": errorBody,
	})
}

func invalidJSON(c *gin.Context) {
	WriteError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
}

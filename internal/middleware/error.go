package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/logger"
)

// ErrorBody renders an AppError as the JSON error envelope. Validation
// errors carry the offending field, the supplied value and the requirement.
func ErrorBody(appErr *apperrors.AppError) gin.H {
	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
		body["value"] = appErr.Value
		body["requirement"] = appErr.Requirement
	}
	return gin.H{"error": body}
}

// WriteError writes err as a JSON error response. Errors that are not
// AppErrors are logged and reported as internal errors.
func WriteError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"message", appErr.Message,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}
	c.JSON(appErr.StatusCode, ErrorBody(appErr))
}

// ErrorHandler converts the last error attached to the Gin context into a
// JSON error response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/middleware"
	"bookkeeper/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// getGroupID returns the group ID checked by GroupAccess.
func getGroupID(c *gin.Context) (string, error) {
	groupID := c.GetString("groupID")
	if groupID == "" {
		return "", apperrors.ErrForbidden
	}
	return groupID, nil
}

// parsePathID reads a UUID path parameter.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.InvalidInput(param, id, "must be a UUID")
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(field, value, "date in YYYY-MM-DD format")
	}
	return d, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(key, raw, "must be an integer")
	}
	return n, nil
}

// bindingError turns a binding failure into an INVALID_INPUT error. The first
// failed field is named when the validator reports one.
func bindingError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return apperrors.InvalidInput(fe.Field(), fe.Value(), fe.Tag())
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/logger"
	"bookkeeper/internal/uuid"
)

// MembershipChecker reports whether a user belongs to a group.
type MembershipChecker interface {
	IsMember(groupID, userID string) (bool, error)
}

// GroupAccess rejects requests to a group the authenticated user is not a
// member of. It must run after AuthMiddleware. On success the group ID is
// stored in the context as "groupID".
func GroupAccess(groups MembershipChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Param("groupId")
		if !uuid.IsValid(groupID) {
			abortWithError(c, apperrors.InvalidInput("groupId", groupID, "must be a UUID"))
			return
		}

		userID := c.GetString("userID")
		if userID == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		ok, err := groups.IsMember(groupID, userID)
		if err != nil {
			logger.Get().Errorw("membership check failed", "group_id", groupID, "user_id", userID, "error", err)
			abortWithError(c, apperrors.ErrInternalServer)
			return
		}
		if !ok {
			abortWithError(c, apperrors.ErrForbidden)
			return
		}

		c.Set("groupID", groupID)
		c.Next()
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookkeeper/internal/services"
)

// GroupHandler handles group and membership requests.
type GroupHandler struct {
	groupService services.GroupServicer
	auditService services.AuditServicer
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService services.GroupServicer, auditService services.AuditServicer) *GroupHandler {
	return &GroupHandler{groupService: groupService, auditService: auditService}
}

// CreateGroupRequest represents the request payload for creating a group
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// AddMemberRequest represents the request payload for adding a group member
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// CreateGroup creates a group owned by the authenticated user
// @Summary     Create a group
// @Tags        groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGroupRequest true "Group details"
// @Success     201 {object} models.Group "Group created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	group, err := h.groupService.CreateGroup(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(group.ID, userID, "CREATE_GROUP", "group", group.ID, c.ClientIP(),
		map[string]interface{}{"name": group.Name})

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// GetGroups lists the groups of the authenticated user
// @Summary     List groups
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Group "Groups"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /groups [get]
func (h *GroupHandler) GetGroups(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.groupService.GetUserGroups(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// AddMember adds a user to the group
// @Summary     Add a group member
// @Tags        groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       request body AddMemberRequest true "User to add"
// @Success     204 "Member added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not a member of the group"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /groups/{groupId}/users [post]
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	groupID, err := getGroupID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	if err := h.groupService.AddMember(groupID, req.UserID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(groupID, userID, "ADD_MEMBER", "user", req.UserID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

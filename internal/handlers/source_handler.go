package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookkeeper/internal/services"
)

// SourceHandler handles funding source requests.
type SourceHandler struct {
	sourceService services.SourceServicer
	auditService  services.AuditServicer
}

// NewSourceHandler creates a new SourceHandler.
func NewSourceHandler(sourceService services.SourceServicer, auditService services.AuditServicer) *SourceHandler {
	return &SourceHandler{sourceService: sourceService, auditService: auditService}
}

// SourceShareRequest is one user's share of a source.
type SourceShareRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Share  int    `json:"share" binding:"min=0"`
}

// CreateSourceRequest represents the request payload for creating a source.
// The order of users decides who receives remainder cents.
type CreateSourceRequest struct {
	Name  string               `json:"name" binding:"required,max=255"`
	Users []SourceShareRequest `json:"users" binding:"required,min=1,dive"`
}

// CreateSource creates a funding source in the group
// @Summary     Create a source
// @Tags        sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       request body CreateSourceRequest true "Source details"
// @Success     201 {object} models.Source "Source created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not a member of the group"
// @Router      /groups/{groupId}/sources [post]
func (h *SourceHandler) CreateSource(c *gin.Context) {
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

	var req CreateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	shares := make([]services.SourceShare, len(req.Users))
	for i, u := range req.Users {
		shares[i] = services.SourceShare{UserID: u.UserID, Share: u.Share}
	}

	source, err := h.sourceService.CreateSource(groupID, req.Name, shares)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(groupID, userID, "CREATE_SOURCE", "source", source.ID, c.ClientIP(),
		map[string]interface{}{"name": source.Name, "users": len(shares)})

	c.JSON(http.StatusCreated, gin.H{"source": source})
}

// GetSources lists the sources of the group
// @Summary     List sources
// @Tags        sources
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Success     200 {array} models.Source "Sources"
// @Failure     403 {object} ErrorResponse "Not a member of the group"
// @Router      /groups/{groupId}/sources [get]
func (h *SourceHandler) GetSources(c *gin.Context) {
	groupID, err := getGroupID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sources, err := h.sourceService.GetGroupSources(groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

// GetSource returns one source with its user shares
// @Summary     Get a source
// @Tags        sources
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       id path string true "Source ID"
// @Success     200 {object} models.Source "Source"
// @Failure     404 {object} ErrorResponse "Source not found"
// @Router      /groups/{groupId}/sources/{id} [get]
func (h *SourceHandler) GetSource(c *gin.Context) {
	groupID, err := getGroupID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	sourceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	source, err := h.sourceService.GetSourceByID(groupID, sourceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"source": source})
}

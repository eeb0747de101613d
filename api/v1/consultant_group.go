package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/services"
)

// ConsultantGroupController handles consultant groups
type ConsultantGroupController struct {
	groups *services.ConsultantGroupService
}

func NewConsultantGroupController(groups *services.ConsultantGroupService) *ConsultantGroupController {
	return &ConsultantGroupController{groups: groups}
}

func (gc *ConsultantGroupController) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/consultant-groups")
	{
		groups.GET("", gc.ListGroups)
		groups.POST("", gc.CreateGroup)
		groups.PUT("/:id", gc.RenameGroup)
		groups.DELETE("/:id", gc.DeleteGroup)
	}
}

// ListGroups returns every group with its member consultants
func (gc *ConsultantGroupController) ListGroups(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	groups, err := gc.groups.ListGroups(c.Request.Context(), caps)
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, groups)
}

func (gc *ConsultantGroupController) CreateGroup(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.GroupRequest
	if !bind(c, &req) {
		return
	}
	group, err := gc.groups.CreateGroup(c.Request.Context(), caps, req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusCreated, group)
}

func (gc *ConsultantGroupController) RenameGroup(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.GroupRequest
	if !bind(c, &req) {
		return
	}
	group, err := gc.groups.RenameGroup(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, group)
}

// DeleteGroup removes a group; its members become ungrouped
func (gc *ConsultantGroupController) DeleteGroup(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	if err := gc.groups.DeleteGroup(c.Request.Context(), caps, c.Param("id")); err != nil {
		mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Group deleted successfully"})
}

package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/services"
)

// AssignmentController handles project–consultant assignments
type AssignmentController struct {
	assignments *services.AssignmentService
}

func NewAssignmentController(assignments *services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignments: assignments}
}

func (ac *AssignmentController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects/:id/consultants")
	{
		projects.GET("", ac.ListByProject)
		projects.GET("/:consultantId", ac.GetDetail)
		projects.PATCH("/:consultantId", ac.Update)
		projects.POST("/:consultantId/toggle", ac.Toggle)
	}
}

// ListByProject returns the consultants assigned to a project
func (ac *AssignmentController) ListByProject(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	assignments, err := ac.assignments.ListByProject(c.Request.Context(), caps, c.Param("id"))
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, assignments)
}

// Toggle assigns the consultant if unassigned, otherwise removes the assignment
func (ac *AssignmentController) Toggle(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	result, err := ac.assignments.Toggle(c.Request.Context(), caps, c.Param("id"), c.Param("consultantId"))
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}

// GetDetail returns the assignment with its invoices, tasks and payment summary
func (ac *AssignmentController) GetDetail(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	detail, err := ac.assignments.GetDetail(c.Request.Context(), caps, c.Param("id"), c.Param("consultantId"))
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, detail)
}

func (ac *AssignmentController) Update(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.UpdateAssignmentRequest
	if !bind(c, &req) {
		return
	}
	assignment, err := ac.assignments.Update(c.Request.Context(), caps, c.Param("id"), c.Param("consultantId"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, assignment)
}

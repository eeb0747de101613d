package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/services"
)

// ProjectController handles project endpoints
type ProjectController struct {
	projects *services.ProjectService
}

func NewProjectController(projects *services.ProjectService) *ProjectController {
	return &ProjectController{projects: projects}
}

// RegisterRoutes registers project routes
func (pc *ProjectController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", pc.ListProjects)
		projects.POST("", pc.CreateProject)
		projects.GET("/:id", pc.GetProject)
		projects.PUT("/:id", pc.UpdateProject)
		projects.DELETE("/:id", pc.DeleteProject)
		projects.PATCH("/:id/status", pc.UpdateStatus)
		projects.PATCH("/:id/assignment", pc.UpdateAssignment)
		projects.GET("/:id/payments", pc.GetPayments)
		projects.GET("/:id/stats", pc.GetProjectStats)
	}
}

// ListProjects godoc
// @Summary List projects with pagination and filtering
// @Description Clients only see projects they are attached to
// @Tags projects
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Search term for name, client or description"
// @Param status query string false "Project status"
// @Param sortBy query string false "Field to sort by (createdAt, updatedAt, name, status, estimatedCost, clientName)"
// @Param sortOrder query string false "Sort order (asc or desc)"
// @Success 200 {object} dto.ProjectListResponse
// @Router /projects [get]
func (pc *ProjectController) ListProjects(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}

	var filter dto.ProjectFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid query parameters", "error": err.Error()})
		return
	}

	response, err := pc.projects.ListProjects(c.Request.Context(), caps, filter)
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, response)
}

// GetProject godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [get]
func (pc *ProjectController) GetProject(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	project, err := pc.projects.GetProject(c.Request.Context(), caps, c.Param("id"))
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, project)
}

// CreateProject godoc
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Param project body dto.CreateProjectRequest true "Project"
// @Success 201 {object} dto.ProjectResponse
// @Router /projects [post]
func (pc *ProjectController) CreateProject(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.CreateProjectRequest
	if !bind(c, &req) {
		return
	}

	project, err := pc.projects.CreateProject(c.Request.Context(), caps, req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusCreated, project)
}

// UpdateProject godoc
// @Summary Update a project's fields (owner or admin)
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param project body dto.UpdateProjectRequest true "Project"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [put]
func (pc *ProjectController) UpdateProject(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !bind(c, &req) {
		return
	}

	project, err := pc.projects.UpdateProject(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, project)
}

func (pc *ProjectController) UpdateStatus(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.UpdateProjectStatusRequest
	if !bind(c, &req) {
		return
	}

	project, err := pc.projects.UpdateStatus(c.Request.Context(), caps, c.Param("id"), req.Status)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, project)
}

func (pc *ProjectController) UpdateAssignment(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.UpdateProjectAssignmentRequest
	if !bind(c, &req) {
		return
	}

	project, err := pc.projects.UpdateAssignment(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, project)
}

// DeleteProject godoc
// @Summary Delete a project with its assignments, invoices and tasks
// @Tags projects
// @Param id path string true "Project ID"
// @Success 200
// @Router /projects/{id} [delete]
func (pc *ProjectController) DeleteProject(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	if err := pc.projects.DeleteProject(c.Request.Context(), caps, c.Param("id")); err != nil {
		mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Project deleted successfully",
	})
}

func (pc *ProjectController) GetPayments(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	summary, err := pc.projects.GetPayments(c.Request.Context(), caps, c.Param("id"))
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, summary)
}

// GetProjectStats godoc
// @Summary Project dashboard counts and payment summary
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectStatsResponse
// @Router /projects/{id}/stats [get]
func (pc *ProjectController) GetProjectStats(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	stats, err := pc.projects.GetProjectStats(c.Request.Context(), caps, c.Param("id"))
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, stats)
}

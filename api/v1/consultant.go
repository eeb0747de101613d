package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/services"
)

// ConsultantController handles the consultant directory
type ConsultantController struct {
	consultants *services.ConsultantService
}

func NewConsultantController(consultants *services.ConsultantService) *ConsultantController {
	return &ConsultantController{consultants: consultants}
}

func (cc *ConsultantController) RegisterRoutes(router *gin.RouterGroup) {
	consultants := router.Group("/consultants")
	{
		consultants.GET("", cc.ListConsultants)
		consultants.POST("", cc.CreateConsultant)
		consultants.GET("/:id", cc.GetConsultant)
		consultants.PUT("/:id", cc.UpdateConsultant)
		consultants.DELETE("/:id", cc.DeleteConsultant)
		consultants.GET("/:id/projects", cc.ListProjects)
	}
}

func (cc *ConsultantController) ListConsultants(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	consultants, err := cc.consultants.ListConsultants(c.Request.Context(), caps)
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, consultants)
}

// GetConsultant returns a consultant with their group and project assignments
func (cc *ConsultantController) GetConsultant(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	consultant, err := cc.consultants.GetConsultant(c.Request.Context(), caps, c.Param("id"))
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, consultant)
}

func (cc *ConsultantController) ListProjects(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	projects, err := cc.consultants.ListProjects(c.Request.Context(), caps, c.Param("id"))
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, projects)
}

func (cc *ConsultantController) CreateConsultant(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.ConsultantRequest
	if !bind(c, &req) {
		return
	}

	consultant, err := cc.consultants.CreateConsultant(c.Request.Context(), caps, req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusCreated, consultant)
}

func (cc *ConsultantController) UpdateConsultant(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.ConsultantRequest
	if !bind(c, &req) {
		return
	}

	consultant, err := cc.consultants.UpdateConsultant(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, consultant)
}

func (cc *ConsultantController) DeleteConsultant(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	if err := cc.consultants.DeleteConsultant(c.Request.Context(), caps, c.Param("id")); err != nil {
		mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Consultant deleted successfully"})
}

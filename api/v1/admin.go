package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/services"
)

// AdminController serves the admin dashboard
type AdminController struct {
	admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

func (ac *AdminController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/stats", ac.GetStats)
	router.GET("/users", ac.ListUsers)
	router.PUT("/users/:id", ac.UpdateUser)
	router.DELETE("/users/:id", ac.DeleteUser)
}

func (ac *AdminController) GetStats(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	stats, err := ac.admin.GetStats(c.Request.Context(), caps)
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, stats)
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	users, err := ac.admin.ListUsers(c.Request.Context(), caps)
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, users)
}

// UpdateUser changes a profile's user type and admin flag
func (ac *AdminController) UpdateUser(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bind(c, &req) {
		return
	}
	user, err := ac.admin.UpdateUser(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, user)
}

func (ac *AdminController) DeleteUser(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	if err := ac.admin.DeleteUser(c.Request.Context(), caps, c.Param("id")); err != nil {
		mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "User deleted successfully",
	})
}

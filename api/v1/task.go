package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/services"
)

// TaskController handles consultant tasks
type TaskController struct {
	tasks *services.TaskService
}

func NewTaskController(tasks *services.TaskService) *TaskController {
	return &TaskController{tasks: tasks}
}

func (tc *TaskController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/assignments/:id/tasks", tc.ListTasks)
	router.POST("/assignments/:id/tasks", tc.CreateTask)

	tasks := router.Group("/tasks")
	{
		tasks.PUT("/:id", tc.UpdateTask)
		tasks.DELETE("/:id", tc.DeleteTask)
		tasks.POST("/:id/advance", tc.AdvanceTask)
	}
}

func (tc *TaskController) ListTasks(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	tasks, err := tc.tasks.ListTasks(c.Request.Context(), caps, c.Param("id"))
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, tasks)
}

func (tc *TaskController) CreateTask(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.TaskRequest
	if !bind(c, &req) {
		return
	}
	task, err := tc.tasks.CreateTask(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusCreated, task)
}

func (tc *TaskController) UpdateTask(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.TaskRequest
	if !bind(c, &req) {
		return
	}
	task, err := tc.tasks.UpdateTask(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, task)
}

// AdvanceTask moves the task to the next status in the cycle
func (tc *TaskController) AdvanceTask(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	task, err := tc.tasks.AdvanceTask(c.Request.Context(), caps, c.Param("id"))
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, task)
}

func (tc *TaskController) DeleteTask(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	if err := tc.tasks.DeleteTask(c.Request.Context(), caps, c.Param("id")); err != nil {
		mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Task deleted successfully"})
}

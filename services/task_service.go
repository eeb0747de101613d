package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/models"
	"github.com/studio-desk/repositories"
)

// TaskService handles tasks tracked on assignments
type TaskService struct {
	taskRepo    *repositories.TaskRepository
	assignments *AssignmentService
	changes     *ChangeRecorder
	now         func() time.Time
}

func NewTaskService(taskRepo *repositories.TaskRepository, assignments *AssignmentService, changes *ChangeRecorder) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		assignments: assignments,
		changes:     changes,
		now:         time.Now,
	}
}

// ListTasks returns an assignment's tasks
func (s *TaskService) ListTasks(ctx context.Context, caps Capabilities, assignmentID string) ([]dto.TaskResponse, error) {
	if _, err := s.assignments.resolve(ctx, caps, assignmentID); err != nil {
		return nil, err
	}
	tasks, err := s.assignments.tasks(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return taskResponses(tasks, s.now()), nil
}

func (s *TaskService) CreateTask(ctx context.Context, caps Capabilities, assignmentID string, req dto.TaskRequest) (dto.TaskResponse, error) {
	if !caps.CanMutateWork() {
		return dto.TaskResponse{}, forbidden("create tasks")
	}
	assignment, err := s.assignments.resolve(ctx, caps, assignmentID)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	task := models.Task{ProjectConsultantID: assignment.ID}
	if err := applyTaskRequest(&task, req); err != nil {
		return dto.TaskResponse{}, err
	}
	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return dto.TaskResponse{}, translate(err, "task")
	}
	s.record(ctx, caps, created, querycache.ActionCreate)
	return s.response(created), nil
}

func (s *TaskService) UpdateTask(ctx context.Context, caps Capabilities, id string, req dto.TaskRequest) (dto.TaskResponse, error) {
	if !caps.CanMutateWork() {
		return dto.TaskResponse{}, forbidden("edit tasks")
	}
	task, err := s.load(ctx, caps, id)
	if err != nil {
		return dto.TaskResponse{}, err
	}
	if err := applyTaskRequest(&task, req); err != nil {
		return dto.TaskResponse{}, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return dto.TaskResponse{}, translate(err, "task")
	}
	s.record(ctx, caps, task, querycache.ActionUpdate)
	return s.response(task), nil
}

// AdvanceTask moves the task to the next status in the cycle
// Pending Input -> In Progress -> Completed -> Pending Input.
func (s *TaskService) AdvanceTask(ctx context.Context, caps Capabilities, id string) (dto.TaskResponse, error) {
	if !caps.CanMutateWork() {
		return dto.TaskResponse{}, forbidden("edit tasks")
	}
	task, err := s.load(ctx, caps, id)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	next := task.Status.Next()
	updated, err := s.taskRepo.UpdateStatus(ctx, id, task.Status, next)
	if err != nil {
		return dto.TaskResponse{}, translate(err, "task")
	}
	if !updated {
		return dto.TaskResponse{}, fmt.Errorf("task status changed concurrently: %w", ErrConflict)
	}
	task.Status = next
	s.record(ctx, caps, task, querycache.ActionUpdate)
	return s.response(task), nil
}

func (s *TaskService) DeleteTask(ctx context.Context, caps Capabilities, id string) error {
	if !caps.CanMutateWork() {
		return forbidden("delete tasks")
	}
	task, err := s.load(ctx, caps, id)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return translate(err, "task")
	}
	s.record(ctx, caps, task, querycache.ActionDelete)
	return nil
}

func (s *TaskService) load(ctx context.Context, caps Capabilities, id string) (models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return models.Task{}, translate(err, "task")
	}
	if _, err := s.assignments.resolve(ctx, caps, task.ProjectConsultantID); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskService) record(ctx context.Context, caps Capabilities, task models.Task, action querycache.Action) {
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity:  querycache.EntityTask,
		Action:  action,
		ID:      task.ID,
		Parents: map[querycache.Entity]string{querycache.EntityAssignment: task.ProjectConsultantID},
	})
}

func (s *TaskService) response(task models.Task) dto.TaskResponse {
	return dto.TaskResponse{Task: task, IsOverdue: task.IsOverdue(s.now())}
}

func applyTaskRequest(task *models.Task, req dto.TaskRequest) error {
	if req.Status != "" && !req.Status.Valid() {
		return invalid("unknown task status %q", req.Status)
	}
	task.Title = strings.TrimSpace(req.Title)
	task.Description = req.Description
	task.DueDate = req.DueDate.TimePtr()
	if req.Status != "" {
		task.Status = req.Status
	}
	return nil
}

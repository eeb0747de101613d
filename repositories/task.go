package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/studio-desk/models"
)

// TaskRepository handles tasks tracked on assignments
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindByAssignment lists an assignment's tasks, earliest due first
func (r *TaskRepository) FindByAssignment(ctx context.Context, assignmentID string) ([]models.Task, error) {
	var tasks []models.Task
	result := r.db.WithContext(ctx).
		Where("project_consultant_id = ?", assignmentID).
		Order("due_date IS NULL, due_date ASC, created_at ASC").
		Find(&tasks)
	return tasks, result.Error
}

// FindByProject lists the tasks of every assignment on a project
func (r *TaskRepository) FindByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	assignments := r.db.Model(&models.ProjectConsultant{}).Select("id").Where("project_id = ?", projectID)
	result := r.db.WithContext(ctx).Where("project_consultant_id IN (?)", assignments).Find(&tasks)
	return tasks, result.Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	return task, result.Error
}

func (r *TaskRepository) Create(ctx context.Context, task models.Task) (models.Task, error) {
	result := r.db.WithContext(ctx).Create(&task)
	return task, result.Error
}

func (r *TaskRepository) Update(ctx context.Context, task models.Task) error {
	return r.db.WithContext(ctx).Save(&task).Error
}

// UpdateStatus writes next only while the task still has the expected
// status. It reports whether a row changed.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, expected, next models.TaskStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", next)
	return result.RowsAffected == 1, result.Error
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/studio-desk/models"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindAll retrieves all projects, newest first
func (r *ProjectRepository) FindAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&projects)
	return projects, result.Error
}

// FindByID retrieves a project by its ID
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (models.Project, error) {
	var project models.Project
	result := r.db.WithContext(ctx).First(&project, "id = ?", id)
	return project, result.Error
}

// Create inserts a new project into the database
func (r *ProjectRepository) Create(ctx context.Context, project models.Project) (models.Project, error) {
	result := r.db.WithContext(ctx).Create(&project)
	return project, result.Error
}

// Update modifies an existing project
func (r *ProjectRepository) Update(ctx context.Context, project models.Project) error {
	result := r.db.WithContext(ctx).Save(&project)
	return result.Error
}

// UpdateColumns sets the given columns on one project. Zero values are written.
func (r *ProjectRepository) UpdateColumns(ctx context.Context, id string, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes a project and hard deletes its assignments together
// with their invoices and tasks.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignmentIDs []string
		if err := tx.Model(&models.ProjectConsultant{}).Where("project_id = ?", id).Pluck("id", &assignmentIDs).Error; err != nil {
			return err
		}
		if err := deleteAssignments(tx, assignmentIDs); err != nil {
			return err
		}

		result := tx.Delete(&models.Project{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Count returns the exact number of live projects
func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error
	return count, err
}

// deleteAssignments removes assignments with their invoices and tasks. It
// must run inside a transaction.
func deleteAssignments(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("project_consultant_id IN ?", ids).Delete(&models.Invoice{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_consultant_id IN ?", ids).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.ProjectConsultant{}).Error
}

package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/studio-desk/models"
)

// AssignmentRepository handles project-consultant assignments
type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByProject lists a project's assignments with their consultant and group
func (r *AssignmentRepository) FindByProject(ctx context.Context, projectID string) ([]models.ProjectConsultant, error) {
	var assignments []models.ProjectConsultant
	result := r.db.WithContext(ctx).
		Preload("Consultant.Membership.Group").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&assignments)
	return assignments, result.Error
}

// FindByConsultant lists a consultant's assignments with their project
func (r *AssignmentRepository) FindByConsultant(ctx context.Context, consultantID string) ([]models.ProjectConsultant, error) {
	var assignments []models.ProjectConsultant
	result := r.db.WithContext(ctx).
		Preload("Project").
		Where("consultant_id = ?", consultantID).
		Order("created_at DESC").
		Find(&assignments)
	return assignments, result.Error
}

// FindByID retrieves an assignment with its project and consultant
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (models.ProjectConsultant, error) {
	var assignment models.ProjectConsultant
	result := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Consultant.Membership.Group").
		First(&assignment, "id = ?", id)
	return assignment, result.Error
}

// FindByProjectAndConsultant retrieves the assignment pairing one project with one consultant
func (r *AssignmentRepository) FindByProjectAndConsultant(ctx context.Context, projectID, consultantID string) (models.ProjectConsultant, error) {
	var assignment models.ProjectConsultant
	result := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Consultant.Membership.Group").
		Where("project_id = ? AND consultant_id = ?", projectID, consultantID).
		First(&assignment)
	return assignment, result.Error
}

// Create inserts one assignment. The unique (project_id, consultant_id)
// index rejects a second row for the same pair.
func (r *AssignmentRepository) Create(ctx context.Context, assignment models.ProjectConsultant) (models.ProjectConsultant, error) {
	result := r.db.WithContext(ctx).Omit("Project", "Consultant", "Invoices", "Tasks").Create(&assignment)
	return assignment, result.Error
}

// UpdateColumns sets quote related columns on an assignment
func (r *AssignmentRepository) UpdateColumns(ctx context.Context, id string, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.ProjectConsultant{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an assignment together with its invoices and tasks
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteAssignments(tx, []string{id})
	})
}

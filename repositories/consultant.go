package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/studio-desk/models"
)

// ConsultantRepository handles consultants and their group membership
type ConsultantRepository struct {
	db *gorm.DB
}

func NewConsultantRepository(db *gorm.DB) *ConsultantRepository {
	return &ConsultantRepository{db: db}
}

// FindAll retrieves consultants with their group, ordered by name
func (r *ConsultantRepository) FindAll(ctx context.Context) ([]models.Consultant, error) {
	var consultants []models.Consultant
	result := r.db.WithContext(ctx).
		Preload("Membership.Group").
		Order("name ASC").
		Find(&consultants)
	return consultants, result.Error
}

// FindByID retrieves one consultant with its group
func (r *ConsultantRepository) FindByID(ctx context.Context, id string) (models.Consultant, error) {
	var consultant models.Consultant
	result := r.db.WithContext(ctx).Preload("Membership.Group").First(&consultant, "id = ?", id)
	return consultant, result.Error
}

// Create inserts the consultant and then, when groupID is set, its
// membership. Both writes commit or neither does.
func (r *ConsultantRepository) Create(ctx context.Context, consultant models.Consultant, groupID *string) (models.Consultant, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Membership").Create(&consultant).Error; err != nil {
			return err
		}
		if groupID == nil || *groupID == "" {
			return nil
		}
		return upsertMembership(tx, consultant.ID, *groupID)
	})
	return consultant, err
}

// Update saves the consultant's fields. When setGroup is true the membership
// is replaced: a nil or empty groupID removes it.
func (r *ConsultantRepository) Update(ctx context.Context, consultant models.Consultant, setGroup bool, groupID *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Membership").Save(&consultant).Error; err != nil {
			return err
		}
		if !setGroup {
			return nil
		}
		if groupID == nil || *groupID == "" {
			return deleteMembership(tx, consultant.ID)
		}
		return upsertMembership(tx, consultant.ID, *groupID)
	})
}

// Delete soft deletes the consultant, removes its membership and hard
// deletes its assignments with their invoices and tasks.
func (r *ConsultantRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignmentIDs []string
		if err := tx.Model(&models.ProjectConsultant{}).Where("consultant_id = ?", id).Pluck("id", &assignmentIDs).Error; err != nil {
			return err
		}
		if err := deleteAssignments(tx, assignmentIDs); err != nil {
			return err
		}
		if err := deleteMembership(tx, id); err != nil {
			return err
		}

		result := tx.Delete(&models.Consultant{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Exists reports whether a live consultant with id exists
func (r *ConsultantRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Consultant{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *ConsultantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Consultant{}).Count(&count).Error
	return count, err
}

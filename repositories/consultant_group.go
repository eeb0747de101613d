package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studio-desk/models"
)

// ConsultantGroupRepository handles consultant groups and memberships
type ConsultantGroupRepository struct {
	db *gorm.DB
}

func NewConsultantGroupRepository(db *gorm.DB) *ConsultantGroupRepository {
	return &ConsultantGroupRepository{db: db}
}

func (r *ConsultantGroupRepository) FindAll(ctx context.Context) ([]models.ConsultantGroup, error) {
	var groups []models.ConsultantGroup
	result := r.db.WithContext(ctx).Order("name ASC").Find(&groups)
	return groups, result.Error
}

func (r *ConsultantGroupRepository) FindByID(ctx context.Context, id string) (models.ConsultantGroup, error) {
	var group models.ConsultantGroup
	result := r.db.WithContext(ctx).First(&group, "id = ?", id)
	return group, result.Error
}

func (r *ConsultantGroupRepository) Create(ctx context.Context, group models.ConsultantGroup) (models.ConsultantGroup, error) {
	result := r.db.WithContext(ctx).Create(&group)
	return group, result.Error
}

func (r *ConsultantGroupRepository) Rename(ctx context.Context, id, name string) error {
	result := r.db.WithContext(ctx).Model(&models.ConsultantGroup{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the group's memberships and soft deletes the group
func (r *ConsultantGroupRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.ConsultantGroupMembership{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ConsultantGroup{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ConsultantGroupRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ConsultantGroup{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *ConsultantGroupRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ConsultantGroup{}).Count(&count).Error
	return count, err
}

// upsertMembership writes the single membership row of a consultant in one
// statement, keyed on the unique consultant_id.
func upsertMembership(db *gorm.DB, consultantID, groupID string) error {
	membership := models.ConsultantGroupMembership{ConsultantID: consultantID, GroupID: groupID}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "consultant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"group_id": groupID, "updated_at": time.Now()}),
	}).Create(&membership).Error
}

func deleteMembership(db *gorm.DB, consultantID string) error {
	return db.Where("consultant_id = ?", consultantID).Delete(&models.ConsultantGroupMembership{}).Error
}

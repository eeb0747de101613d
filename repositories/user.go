package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/studio-desk/models"
)

// UserRepository handles accounts and their profile fields
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	return user, result.Error
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	return user, result.Error
}

// FindAll lists profiles ordered by name
func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	result := r.db.WithContext(ctx).Order("full_name ASC, email ASC").Find(&users)
	return users, result.Error
}

func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	result := r.db.WithContext(ctx).Create(&user)
	return user, result.Error
}

// UpdateRole sets the profile's user type and admin flag
func (r *UserRepository) UpdateRole(ctx context.Context, id string, userType models.UserType, isAdmin bool) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"user_type": userType, "is_admin": isAdmin})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateFullName changes the display name on the profile
func (r *UserRepository) UpdateFullName(ctx context.Context, id, fullName string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("full_name", fullName).Error
}

// Delete soft-deletes a profile; sessions are left to fail verification
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

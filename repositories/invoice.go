package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/studio-desk/models"
)

// InvoiceRepository handles invoices raised against assignments
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindByAssignment lists an assignment's invoices by invoice date
func (r *InvoiceRepository) FindByAssignment(ctx context.Context, assignmentID string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	result := r.db.WithContext(ctx).
		Where("project_consultant_id = ?", assignmentID).
		Order("invoice_date ASC, created_at ASC").
		Find(&invoices)
	return invoices, result.Error
}

// FindByProject lists the invoices of every assignment on a project
func (r *InvoiceRepository) FindByProject(ctx context.Context, projectID string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	assignments := r.db.Model(&models.ProjectConsultant{}).Select("id").Where("project_id = ?", projectID)
	result := r.db.WithContext(ctx).
		Where("project_consultant_id IN (?)", assignments).
		Order("invoice_date ASC").
		Find(&invoices)
	return invoices, result.Error
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (models.Invoice, error) {
	var invoice models.Invoice
	result := r.db.WithContext(ctx).First(&invoice, "id = ?", id)
	return invoice, result.Error
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice models.Invoice) (models.Invoice, error) {
	result := r.db.WithContext(ctx).Create(&invoice)
	return invoice, result.Error
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice models.Invoice) error {
	return r.db.WithContext(ctx).Save(&invoice).Error
}

// MarkPaid sets the invoice to Paid and stamps the payment date
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id string, paidOn time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       models.InvoiceStatusPaid,
		"payment_date": paidOn,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Invoice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

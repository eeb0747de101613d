package services

import (
	"context"
	"strings"
	"time"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/models"
	"github.com/studio-desk/repositories"
)

// InvoiceService handles invoices raised against assignments
type InvoiceService struct {
	invoiceRepo *repositories.InvoiceRepository
	assignments *AssignmentService
	changes     *ChangeRecorder
	now         func() time.Time
}

func NewInvoiceService(invoiceRepo *repositories.InvoiceRepository, assignments *AssignmentService, changes *ChangeRecorder) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		assignments: assignments,
		changes:     changes,
		now:         time.Now,
	}
}

// ListInvoices returns an assignment's invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, caps Capabilities, assignmentID string) ([]models.Invoice, error) {
	if _, err := s.assignments.resolve(ctx, caps, assignmentID); err != nil {
		return nil, err
	}
	return s.assignments.invoices(ctx, assignmentID)
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, caps Capabilities, assignmentID string, req dto.InvoiceRequest) (models.Invoice, error) {
	if !caps.CanMutateWork() {
		return models.Invoice{}, forbidden("create invoices")
	}
	assignment, err := s.assignments.resolve(ctx, caps, assignmentID)
	if err != nil {
		return models.Invoice{}, err
	}

	invoice := models.Invoice{ProjectConsultantID: assignment.ID}
	if err := applyInvoiceRequest(&invoice, req); err != nil {
		return models.Invoice{}, err
	}
	created, err := s.invoiceRepo.Create(ctx, invoice)
	if err != nil {
		return models.Invoice{}, translate(err, "invoice")
	}
	s.record(ctx, caps, created, querycache.ActionCreate)
	return created, nil
}

func (s *InvoiceService) UpdateInvoice(ctx context.Context, caps Capabilities, id string, req dto.InvoiceRequest) (models.Invoice, error) {
	if !caps.CanMutateWork() {
		return models.Invoice{}, forbidden("edit invoices")
	}
	invoice, err := s.load(ctx, caps, id)
	if err != nil {
		return models.Invoice{}, err
	}
	if err := applyInvoiceRequest(&invoice, req); err != nil {
		return models.Invoice{}, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return models.Invoice{}, translate(err, "invoice")
	}
	s.record(ctx, caps, invoice, querycache.ActionUpdate)
	return invoice, nil
}

// MarkPaid sets the invoice to Paid and stamps the payment date, today by default
func (s *InvoiceService) MarkPaid(ctx context.Context, caps Capabilities, id string, paidOn *time.Time) (models.Invoice, error) {
	if !caps.CanMutateWork() {
		return models.Invoice{}, forbidden("edit invoices")
	}
	invoice, err := s.load(ctx, caps, id)
	if err != nil {
		return models.Invoice{}, err
	}

	date := dto.NewDate(s.now()).Time
	if paidOn != nil {
		date = *paidOn
	}
	if err := s.invoiceRepo.MarkPaid(ctx, id, date); err != nil {
		return models.Invoice{}, translate(err, "invoice")
	}
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaymentDate = &date
	s.record(ctx, caps, invoice, querycache.ActionUpdate)
	return invoice, nil
}

func (s *InvoiceService) DeleteInvoice(ctx context.Context, caps Capabilities, id string) error {
	if !caps.CanMutateWork() {
		return forbidden("delete invoices")
	}
	invoice, err := s.load(ctx, caps, id)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return translate(err, "invoice")
	}
	s.record(ctx, caps, invoice, querycache.ActionDelete)
	return nil
}

func (s *InvoiceService) load(ctx context.Context, caps Capabilities, id string) (models.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return models.Invoice{}, translate(err, "invoice")
	}
	if _, err := s.assignments.resolve(ctx, caps, invoice.ProjectConsultantID); err != nil {
		return models.Invoice{}, err
	}
	return invoice, nil
}

func (s *InvoiceService) record(ctx context.Context, caps Capabilities, invoice models.Invoice, action querycache.Action) {
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity:  querycache.EntityInvoice,
		Action:  action,
		ID:      invoice.ID,
		Parents: map[querycache.Entity]string{querycache.EntityAssignment: invoice.ProjectConsultantID},
	})
}

func applyInvoiceRequest(invoice *models.Invoice, req dto.InvoiceRequest) error {
	status := req.Status
	if status == "" {
		status = models.InvoiceStatusPending
	}
	if !status.Valid() {
		return invalid("unknown invoice status %q", req.Status)
	}
	if req.Amount != nil {
		invoice.Amount = *req.Amount
	}
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = req.InvoiceDate.Time
	}
	invoice.DueDate = req.DueDate.TimePtr()
	invoice.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	invoice.Status = status
	invoice.PaymentDate = req.PaymentDate.TimePtr()
	invoice.Notes = req.Notes
	return nil
}

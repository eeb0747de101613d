package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/lib/aggregate"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/models"
	"github.com/studio-desk/repositories"
)

// AssignmentService handles which consultants work on which project
type AssignmentService struct {
	assignmentRepo *repositories.AssignmentRepository
	consultantRepo *repositories.ConsultantRepository
	invoiceRepo    *repositories.InvoiceRepository
	taskRepo       *repositories.TaskRepository
	projects       *ProjectService
	cache          *querycache.Cache
	changes        *ChangeRecorder
	logger         *zap.Logger
	now            func() time.Time
}

func NewAssignmentService(
	assignmentRepo *repositories.AssignmentRepository,
	consultantRepo *repositories.ConsultantRepository,
	invoiceRepo *repositories.InvoiceRepository,
	taskRepo *repositories.TaskRepository,
	projects *ProjectService,
	cache *querycache.Cache,
	changes *ChangeRecorder,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		consultantRepo: consultantRepo,
		invoiceRepo:    invoiceRepo,
		taskRepo:       taskRepo,
		projects:       projects,
		cache:          cache,
		changes:        changes,
		logger:         logger,
		now:            time.Now,
	}
}

// ListByProject returns a project's assignments with their consultants
func (s *AssignmentService) ListByProject(ctx context.Context, caps Capabilities, projectID string) ([]dto.AssignmentResponse, error) {
	if _, err := s.projects.loadProject(ctx, caps, projectID); err != nil {
		return nil, err
	}
	assignments, err := s.projects.assignments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, dto.NewAssignmentResponse(a))
	}
	return resp, nil
}

// Toggle removes the consultant from the project if assigned, otherwise
// assigns it. The cached assignment list of the project is patched in place.
func (s *AssignmentService) Toggle(ctx context.Context, caps Capabilities, projectID, consultantID string) (dto.ToggleResponse, error) {
	if !caps.CanMutateWork() {
		return dto.ToggleResponse{}, forbidden("assign consultants")
	}
	if _, err := s.projects.loadProject(ctx, caps, projectID); err != nil {
		return dto.ToggleResponse{}, err
	}
	exists, err := s.consultantRepo.Exists(ctx, consultantID)
	if err != nil {
		return dto.ToggleResponse{}, err
	}
	if !exists {
		return dto.ToggleResponse{}, fmt.Errorf("consultant %w", ErrNotFound)
	}

	listKey := querycache.ScopedKey(querycache.EntityAssignment, projectID)
	parents := map[querycache.Entity]string{
		querycache.EntityProject:    projectID,
		querycache.EntityConsultant: consultantID,
	}

	existing, err := s.assignmentRepo.FindByProjectAndConsultant(ctx, projectID, consultantID)
	switch {
	case err == nil:
		if err := s.assignmentRepo.Delete(ctx, existing.ID); err != nil {
			return dto.ToggleResponse{}, translate(err, "assignment")
		}
		querycache.Patch(ctx, s.cache, listKey, func(rows []models.ProjectConsultant) []models.ProjectConsultant {
			kept := rows[:0]
			for _, r := range rows {
				if r.ID != existing.ID {
					kept = append(kept, r)
				}
			}
			return kept
		})
		s.changes.Record(ctx, caps.UserID, querycache.Change{
			Entity:  querycache.EntityAssignment,
			Action:  querycache.ActionDelete,
			ID:      existing.ID,
			Parents: parents,
			Patched: []querycache.Key{listKey},
		})
		return dto.ToggleResponse{Assigned: false}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		created, err := s.assignmentRepo.Create(ctx, models.ProjectConsultant{
			ProjectID:    projectID,
			ConsultantID: consultantID,
		})
		if err != nil {
			return dto.ToggleResponse{}, translate(err, "assignment")
		}
		full, err := s.assignmentRepo.FindByID(ctx, created.ID)
		if err != nil {
			return dto.ToggleResponse{}, translate(err, "assignment")
		}
		full.Project = nil
		querycache.Patch(ctx, s.cache, listKey, func(rows []models.ProjectConsultant) []models.ProjectConsultant {
			return append(rows, full)
		})
		s.changes.Record(ctx, caps.UserID, querycache.Change{
			Entity:  querycache.EntityAssignment,
			Action:  querycache.ActionCreate,
			ID:      full.ID,
			Parents: parents,
			Patched: []querycache.Key{listKey},
		})
		resp := dto.NewAssignmentResponse(full)
		return dto.ToggleResponse{Assigned: true, Assignment: &resp}, nil

	default:
		return dto.ToggleResponse{}, err
	}
}

// find resolves a (project, consultant) pair from the project's cached list
func (s *AssignmentService) find(ctx context.Context, caps Capabilities, projectID, consultantID string) (models.Project, models.ProjectConsultant, error) {
	project, err := s.projects.loadProject(ctx, caps, projectID)
	if err != nil {
		return models.Project{}, models.ProjectConsultant{}, err
	}
	assignments, err := s.projects.assignments(ctx, projectID)
	if err != nil {
		return models.Project{}, models.ProjectConsultant{}, err
	}
	for _, a := range assignments {
		if a.ConsultantID == consultantID {
			return project, a, nil
		}
	}
	return models.Project{}, models.ProjectConsultant{}, fmt.Errorf("assignment %w", ErrNotFound)
}

// GetDetail returns the assignment with project, consultant, invoices, tasks
// and the payment summary of this one assignment
func (s *AssignmentService) GetDetail(ctx context.Context, caps Capabilities, projectID, consultantID string) (dto.AssignmentDetailResponse, error) {
	project, assignment, err := s.find(ctx, caps, projectID, consultantID)
	if err != nil {
		return dto.AssignmentDetailResponse{}, err
	}
	invoices, err := s.invoices(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentDetailResponse{}, err
	}
	tasks, err := s.tasks(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentDetailResponse{}, err
	}

	resp := dto.AssignmentDetailResponse{
		Assignment: dto.NewAssignmentResponse(assignment),
		Project:    projectResponse(caps, project),
		Invoices:   invoices,
		Tasks:      taskResponses(tasks, s.now()),
		TaskCounts: aggregate.TaskStatusCounts(tasks),
		Payments:   aggregate.SummarizePayments([]models.ProjectConsultant{assignment}, invoices),
	}
	if assignment.Consultant != nil {
		resp.Consultant = dto.NewConsultantResponse(*assignment.Consultant)
	}
	return resp, nil
}

// Update patches the quote, quote status and fee proposal status.
// Fields named in req.Clear are written back as NULL.
func (s *AssignmentService) Update(ctx context.Context, caps Capabilities, projectID, consultantID string, req dto.UpdateAssignmentRequest) (dto.AssignmentResponse, error) {
	if !caps.CanMutateWork() {
		return dto.AssignmentResponse{}, forbidden("edit assignments")
	}
	if req.QuoteStatus != nil && !req.QuoteStatus.Valid() {
		return dto.AssignmentResponse{}, invalid("unknown quote status %q", *req.QuoteStatus)
	}
	if req.FeeProposalStatus != nil && !req.FeeProposalStatus.Valid() {
		return dto.AssignmentResponse{}, invalid("unknown fee proposal status %q", *req.FeeProposalStatus)
	}
	for _, field := range req.Clear {
		switch field {
		case dto.AssignmentFieldQuote, dto.AssignmentFieldQuoteStatus, dto.AssignmentFieldFeeProposalStatus:
		default:
			return dto.AssignmentResponse{}, invalid("cannot clear %q", field)
		}
	}
	if (req.Quote != nil && req.Clears(dto.AssignmentFieldQuote)) ||
		(req.QuoteStatus != nil && req.Clears(dto.AssignmentFieldQuoteStatus)) ||
		(req.FeeProposalStatus != nil && req.Clears(dto.AssignmentFieldFeeProposalStatus)) {
		return dto.AssignmentResponse{}, invalid("a field cannot be set and cleared together")
	}
	_, assignment, err := s.find(ctx, caps, projectID, consultantID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	columns := map[string]interface{}{}
	switch {
	case req.Quote != nil:
		columns["quote"] = *req.Quote
		assignment.Quote = req.Quote
	case req.Clears(dto.AssignmentFieldQuote):
		columns["quote"] = nil
		assignment.Quote = nil
	}
	switch {
	case req.QuoteStatus != nil:
		columns["quote_status"] = *req.QuoteStatus
		assignment.QuoteStatus = req.QuoteStatus
	case req.Clears(dto.AssignmentFieldQuoteStatus):
		columns["quote_status"] = nil
		assignment.QuoteStatus = nil
	}
	switch {
	case req.FeeProposalStatus != nil:
		columns["fee_proposal_status"] = *req.FeeProposalStatus
		assignment.FeeProposalStatus = req.FeeProposalStatus
	case req.Clears(dto.AssignmentFieldFeeProposalStatus):
		columns["fee_proposal_status"] = nil
		assignment.FeeProposalStatus = nil
	}
	if len(columns) == 0 {
		return dto.NewAssignmentResponse(assignment), nil
	}

	if err := s.assignmentRepo.UpdateColumns(ctx, assignment.ID, columns); err != nil {
		return dto.AssignmentResponse{}, translate(err, "assignment")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityAssignment,
		Action: querycache.ActionUpdate,
		ID:     assignment.ID,
		Parents: map[querycache.Entity]string{
			querycache.EntityProject:    projectID,
			querycache.EntityConsultant: consultantID,
		},
	})
	return dto.NewAssignmentResponse(assignment), nil
}

// resolve loads an assignment by id and checks the caller may see its project
func (s *AssignmentService) resolve(ctx context.Context, caps Capabilities, assignmentID string) (models.ProjectConsultant, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return models.ProjectConsultant{}, translate(err, "assignment")
	}
	if assignment.Project == nil || !caps.CanViewProject(*assignment.Project) {
		return models.ProjectConsultant{}, forbidden("access this assignment")
	}
	return assignment, nil
}

func (s *AssignmentService) invoices(ctx context.Context, assignmentID string) ([]models.Invoice, error) {
	return querycache.Fetch(ctx, s.cache, querycache.ScopedKey(querycache.EntityInvoice, assignmentID),
		func(ctx context.Context) ([]models.Invoice, error) {
			return s.invoiceRepo.FindByAssignment(ctx, assignmentID)
		})
}

func (s *AssignmentService) tasks(ctx context.Context, assignmentID string) ([]models.Task, error) {
	return querycache.Fetch(ctx, s.cache, querycache.ScopedKey(querycache.EntityTask, assignmentID),
		func(ctx context.Context) ([]models.Task, error) {
			return s.taskRepo.FindByAssignment(ctx, assignmentID)
		})
}

func taskResponses(tasks []models.Task, now time.Time) []dto.TaskResponse {
	resp := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, dto.TaskResponse{Task: tasks[i], IsOverdue: tasks[i].IsOverdue(now)})
	}
	return resp
}

package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/lib/aggregate"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/models"
	"github.com/studio-desk/repositories"
)

// ProjectService handles business logic for projects
type ProjectService struct {
	projectRepo    *repositories.ProjectRepository
	userRepo       *repositories.UserRepository
	assignmentRepo *repositories.AssignmentRepository
	invoiceRepo    *repositories.InvoiceRepository
	taskRepo       *repositories.TaskRepository
	cache          *querycache.Cache
	changes        *ChangeRecorder
	logger         *zap.Logger
}

// NewProjectService creates a new project service instance
func NewProjectService(
	projectRepo *repositories.ProjectRepository,
	userRepo *repositories.UserRepository,
	assignmentRepo *repositories.AssignmentRepository,
	invoiceRepo *repositories.InvoiceRepository,
	taskRepo *repositories.TaskRepository,
	cache *querycache.Cache,
	changes *ChangeRecorder,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		invoiceRepo:    invoiceRepo,
		taskRepo:       taskRepo,
		cache:          cache,
		changes:        changes,
		logger:         logger,
	}
}

var validSortColumns = map[string]bool{
	"createdAt":     true,
	"updatedAt":     true,
	"name":          true,
	"status":        true,
	"estimatedCost": true,
	"clientName":    true,
}

func normalizeFilter(filter dto.ProjectFilter) dto.ProjectFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if !validSortColumns[filter.SortBy] {
		filter.SortBy = "createdAt"
	}
	if filter.SortOrder != "asc" && filter.SortOrder != "desc" {
		filter.SortOrder = "desc"
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return filter
}

func (s *ProjectService) allProjects(ctx context.Context) ([]models.Project, error) {
	return querycache.Fetch(ctx, s.cache, querycache.ListKey(querycache.EntityProject), s.projectRepo.FindAll)
}

// ListProjects retrieves projects with pagination, filtering and sorting.
// Staff and admins see every project, clients only the ones attached to them.
func (s *ProjectService) ListProjects(ctx context.Context, caps Capabilities, filter dto.ProjectFilter) (dto.ProjectListResponse, error) {
	filter = normalizeFilter(filter)

	projects, err := s.allProjects(ctx)
	if err != nil {
		return dto.ProjectListResponse{}, err
	}

	search := strings.ToLower(filter.Search)
	visible := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if !caps.CanViewProject(p) {
			continue
		}
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		visible = append(visible, p)
	}
	sortProjects(visible, filter.SortBy, filter.SortOrder == "desc")

	totalCount := len(visible)
	totalPages := totalCount / filter.PageSize
	if totalCount%filter.PageSize > 0 {
		totalPages++
	}

	start := (filter.Page - 1) * filter.PageSize
	if start > totalCount {
		start = totalCount
	}
	end := start + filter.PageSize
	if end > totalCount {
		end = totalCount
	}

	page := make([]dto.ProjectResponse, 0, end-start)
	for _, p := range visible[start:end] {
		page = append(page, projectResponse(caps, p))
	}

	return dto.ProjectListResponse{
		Projects:   page,
		TotalCount: int64(totalCount),
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

func matchesSearch(p models.Project, search string) bool {
	for _, field := range []string{p.Name, p.Description, p.ClientName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func sortProjects(projects []models.Project, sortBy string, desc bool) {
	less := func(a, b models.Project) bool {
		switch sortBy {
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "clientName":
			return strings.ToLower(a.ClientName) < strings.ToLower(b.ClientName)
		case "status":
			return a.Status < b.Status
		case "estimatedCost":
			return a.EstimatedCost < b.EstimatedCost
		case "updatedAt":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(projects, func(i, j int) bool {
		if desc {
			return less(projects[j], projects[i])
		}
		return less(projects[i], projects[j])
	})
}

func projectResponse(caps Capabilities, p models.Project) dto.ProjectResponse {
	manage := caps.CanManageProject(p)
	return dto.ProjectResponse{Project: p, CanEdit: manage, CanDelete: manage}
}

// loadProject reads a project through the cache and checks the caller may see it
func (s *ProjectService) loadProject(ctx context.Context, caps Capabilities, id string) (models.Project, error) {
	project, err := querycache.Fetch(ctx, s.cache, querycache.ScopedKey(querycache.EntityProject, id),
		func(ctx context.Context) (models.Project, error) {
			return s.projectRepo.FindByID(ctx, id)
		})
	if err != nil {
		return models.Project{}, translate(err, "project")
	}
	if !caps.CanViewProject(project) {
		return models.Project{}, forbidden("access this project")
	}
	return project, nil
}

// GetProject retrieves a project by ID
func (s *ProjectService) GetProject(ctx context.Context, caps Capabilities, id string) (dto.ProjectResponse, error) {
	project, err := s.loadProject(ctx, caps, id)
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	return projectResponse(caps, project), nil
}

// CreateProject creates a project owned by the caller
func (s *ProjectService) CreateProject(ctx context.Context, caps Capabilities, req dto.CreateProjectRequest) (dto.ProjectResponse, error) {
	if !caps.CanCreateProject() {
		return dto.ProjectResponse{}, forbidden("create projects")
	}
	if req.Status != "" && !req.Status.Valid() {
		return dto.ProjectResponse{}, invalid("unknown project status %q", req.Status)
	}

	project := models.Project{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		ClientName:    req.ClientName,
		ClientContact: req.ClientContact,
		ClientEmail:   req.ClientEmail,
		Status:        req.Status,
		UserID:        caps.UserID,
	}
	if req.EstimatedCost != nil {
		project.EstimatedCost = *req.EstimatedCost
	}
	staffID, clientID, err := s.checkAssignees(ctx, req.AssignedStaffID, req.AssignedClientID)
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	project.AssignedStaffID, project.AssignedClientID = staffID, clientID

	created, err := s.projectRepo.Create(ctx, project)
	if err != nil {
		return dto.ProjectResponse{}, translate(err, "project")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityProject,
		Action: querycache.ActionCreate,
		ID:     created.ID,
	})
	return projectResponse(caps, created), nil
}

// UpdateProject replaces a project's editable fields. Only the owner or an
// admin may do this.
func (s *ProjectService) UpdateProject(ctx context.Context, caps Capabilities, id string, req dto.UpdateProjectRequest) (dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return dto.ProjectResponse{}, translate(err, "project")
	}
	if !caps.CanManageProject(project) {
		return dto.ProjectResponse{}, forbidden("edit this project")
	}
	if req.Status != "" && !req.Status.Valid() {
		return dto.ProjectResponse{}, invalid("unknown project status %q", req.Status)
	}

	project.Name = strings.TrimSpace(req.Name)
	project.Description = req.Description
	project.ClientName = req.ClientName
	project.ClientContact = req.ClientContact
	project.ClientEmail = req.ClientEmail
	if req.EstimatedCost != nil {
		project.EstimatedCost = *req.EstimatedCost
	}
	if req.Status != "" {
		project.Status = req.Status
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return dto.ProjectResponse{}, translate(err, "project")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityProject,
		Action: querycache.ActionUpdate,
		ID:     project.ID,
	})
	return projectResponse(caps, project), nil
}

// UpdateStatus moves a project to another lifecycle status
func (s *ProjectService) UpdateStatus(ctx context.Context, caps Capabilities, id string, status models.ProjectStatus) (dto.ProjectResponse, error) {
	if !caps.CanMutateWork() {
		return dto.ProjectResponse{}, forbidden("change project status")
	}
	if !status.Valid() {
		return dto.ProjectResponse{}, invalid("unknown project status %q", status)
	}
	if err := s.projectRepo.UpdateColumns(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return dto.ProjectResponse{}, translate(err, "project")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityProject,
		Action: querycache.ActionUpdate,
		ID:     id,
	})
	return s.GetProject(ctx, caps, id)
}

// UpdateAssignment attaches the responsible staff member and the client user
func (s *ProjectService) UpdateAssignment(ctx context.Context, caps Capabilities, id string, req dto.UpdateProjectAssignmentRequest) (dto.ProjectResponse, error) {
	if !caps.CanMutateWork() {
		return dto.ProjectResponse{}, forbidden("assign project members")
	}
	staffID, clientID, err := s.checkAssignees(ctx, req.AssignedStaffID, req.AssignedClientID)
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	columns := map[string]interface{}{
		"assigned_staff_id":  staffID,
		"assigned_client_id": clientID,
	}
	if err := s.projectRepo.UpdateColumns(ctx, id, columns); err != nil {
		return dto.ProjectResponse{}, translate(err, "project")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityProject,
		Action: querycache.ActionUpdate,
		ID:     id,
	})
	return s.GetProject(ctx, caps, id)
}

// checkAssignees verifies the staff id points at a staff user and the
// client id at a client user. Empty ids become nil.
func (s *ProjectService) checkAssignees(ctx context.Context, staffID, clientID *string) (*string, *string, error) {
	staff, err := s.checkUser(ctx, staffID, models.UserTypeStaff)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.checkUser(ctx, clientID, models.UserTypeClient)
	if err != nil {
		return nil, nil, err
	}
	return staff, client, nil
}

func (s *ProjectService) checkUser(ctx context.Context, id *string, want models.UserType) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	user, err := s.userRepo.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("user %s does not exist", *id)
		}
		return nil, err
	}
	if user.UserType != want {
		return nil, invalid("user %s is not a %s user", *id, want)
	}
	return &user.ID, nil
}

// DeleteProject removes a project with its assignments, invoices and tasks
func (s *ProjectService) DeleteProject(ctx context.Context, caps Capabilities, id string) error {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return translate(err, "project")
	}
	if !caps.CanManageProject(project) {
		return forbidden("delete this project")
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return translate(err, "project")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityProject,
		Action: querycache.ActionDelete,
		ID:     id,
	})
	return nil
}

func (s *ProjectService) assignments(ctx context.Context, projectID string) ([]models.ProjectConsultant, error) {
	return querycache.Fetch(ctx, s.cache, querycache.ScopedKey(querycache.EntityAssignment, projectID),
		func(ctx context.Context) ([]models.ProjectConsultant, error) {
			return s.assignmentRepo.FindByProject(ctx, projectID)
		})
}

// GetPayments summarizes quotes and invoices across all of a project's assignments
func (s *ProjectService) GetPayments(ctx context.Context, caps Capabilities, id string) (aggregate.PaymentSummary, error) {
	if _, err := s.loadProject(ctx, caps, id); err != nil {
		return aggregate.PaymentSummary{}, err
	}
	assignments, err := s.assignments(ctx, id)
	if err != nil {
		return aggregate.PaymentSummary{}, err
	}
	invoices, err := s.invoiceRepo.FindByProject(ctx, id)
	if err != nil {
		return aggregate.PaymentSummary{}, err
	}
	return aggregate.SummarizePayments(assignments, invoices), nil
}

// GetProjectStats retrieves statistics for a project
func (s *ProjectService) GetProjectStats(ctx context.Context, caps Capabilities, id string) (dto.ProjectStatsResponse, error) {
	project, err := s.loadProject(ctx, caps, id)
	if err != nil {
		return dto.ProjectStatsResponse{}, err
	}
	assignments, err := s.assignments(ctx, id)
	if err != nil {
		return dto.ProjectStatsResponse{}, err
	}
	invoices, err := s.invoiceRepo.FindByProject(ctx, id)
	if err != nil {
		return dto.ProjectStatsResponse{}, err
	}
	tasks, err := s.taskRepo.FindByProject(ctx, id)
	if err != nil {
		return dto.ProjectStatsResponse{}, err
	}

	return dto.ProjectStatsResponse{
		Project:     projectResponse(caps, project),
		Consultants: len(assignments),
		Tasks:       aggregate.TaskStatusCounts(tasks),
		Invoices:    aggregate.InvoiceStatusCounts(invoices),
		Quotes:      aggregate.QuoteStatusCounts(assignments),
		Payments:    aggregate.SummarizePayments(assignments, invoices),
	}, nil
}

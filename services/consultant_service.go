package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/models"
	"github.com/studio-desk/repositories"
)

// ConsultantService handles business logic for consultants
type ConsultantService struct {
	consultantRepo *repositories.ConsultantRepository
	groupRepo      *repositories.ConsultantGroupRepository
	assignmentRepo *repositories.AssignmentRepository
	cache          *querycache.Cache
	changes        *ChangeRecorder
	logger         *zap.Logger
}

func NewConsultantService(
	consultantRepo *repositories.ConsultantRepository,
	groupRepo *repositories.ConsultantGroupRepository,
	assignmentRepo *repositories.AssignmentRepository,
	cache *querycache.Cache,
	changes *ChangeRecorder,
	logger *zap.Logger,
) *ConsultantService {
	return &ConsultantService{
		consultantRepo: consultantRepo,
		groupRepo:      groupRepo,
		assignmentRepo: assignmentRepo,
		cache:          cache,
		changes:        changes,
		logger:         logger,
	}
}

func (s *ConsultantService) allConsultants(ctx context.Context) ([]models.Consultant, error) {
	return querycache.Fetch(ctx, s.cache, querycache.ListKey(querycache.EntityConsultant), s.consultantRepo.FindAll)
}

// ListConsultants returns every consultant with its group
func (s *ConsultantService) ListConsultants(ctx context.Context, caps Capabilities) ([]dto.ConsultantResponse, error) {
	if !caps.CanViewConsultants() {
		return nil, forbidden("view consultants")
	}
	consultants, err := s.allConsultants(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ConsultantResponse, 0, len(consultants))
	for _, c := range consultants {
		resp = append(resp, dto.NewConsultantResponse(c))
	}
	return resp, nil
}

func (s *ConsultantService) loadConsultant(ctx context.Context, id string) (models.Consultant, error) {
	consultant, err := querycache.Fetch(ctx, s.cache, querycache.ScopedKey(querycache.EntityConsultant, id),
		func(ctx context.Context) (models.Consultant, error) {
			return s.consultantRepo.FindByID(ctx, id)
		})
	return consultant, translate(err, "consultant")
}

// GetConsultant returns a consultant with its group and project assignments
func (s *ConsultantService) GetConsultant(ctx context.Context, caps Capabilities, id string) (dto.ConsultantDetailResponse, error) {
	if !caps.CanViewConsultants() {
		return dto.ConsultantDetailResponse{}, forbidden("view consultants")
	}
	consultant, err := s.loadConsultant(ctx, id)
	if err != nil {
		return dto.ConsultantDetailResponse{}, err
	}
	projects, err := s.projectsOf(ctx, id)
	if err != nil {
		return dto.ConsultantDetailResponse{}, err
	}
	return dto.ConsultantDetailResponse{
		ConsultantResponse: dto.NewConsultantResponse(consultant),
		Projects:           projects,
	}, nil
}

// ListProjects returns the projects a consultant is assigned to
func (s *ConsultantService) ListProjects(ctx context.Context, caps Capabilities, id string) ([]dto.ConsultantProjectItem, error) {
	if !caps.CanViewConsultants() {
		return nil, forbidden("view consultants")
	}
	if _, err := s.loadConsultant(ctx, id); err != nil {
		return nil, err
	}
	return s.projectsOf(ctx, id)
}

func (s *ConsultantService) projectsOf(ctx context.Context, consultantID string) ([]dto.ConsultantProjectItem, error) {
	assignments, err := querycache.Fetch(ctx, s.cache, querycache.ScopedKey(querycache.EntityConsultantAssignments, consultantID),
		func(ctx context.Context) ([]models.ProjectConsultant, error) {
			return s.assignmentRepo.FindByConsultant(ctx, consultantID)
		})
	if err != nil {
		return nil, err
	}

	items := make([]dto.ConsultantProjectItem, 0, len(assignments))
	for _, a := range assignments {
		if a.Project == nil {
			continue
		}
		items = append(items, dto.ConsultantProjectItem{
			AssignmentID:      a.ID,
			ProjectID:         a.ProjectID,
			ProjectName:       a.Project.Name,
			ProjectStatus:     a.Project.Status,
			Quote:             a.Quote,
			QuoteStatus:       a.QuoteStatus,
			FeeProposalStatus: a.FeeProposalStatus,
		})
	}
	return items, nil
}

func (s *ConsultantService) checkGroup(ctx context.Context, groupID *string) (string, error) {
	if groupID == nil || *groupID == "" {
		return "", nil
	}
	exists, err := s.groupRepo.Exists(ctx, *groupID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", invalid("consultant group %s does not exist", *groupID)
	}
	return *groupID, nil
}

// CreateConsultant inserts a consultant and, if a group is given, its membership
func (s *ConsultantService) CreateConsultant(ctx context.Context, caps Capabilities, req dto.ConsultantRequest) (dto.ConsultantResponse, error) {
	if !caps.CanMutateWork() {
		return dto.ConsultantResponse{}, forbidden("create consultants")
	}
	groupID, err := s.checkGroup(ctx, req.GroupID)
	if err != nil {
		return dto.ConsultantResponse{}, err
	}

	created, err := s.consultantRepo.Create(ctx, models.Consultant{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		UserID:      caps.UserID,
	}, &groupID)
	if err != nil {
		return dto.ConsultantResponse{}, translate(err, "consultant")
	}

	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityConsultant,
		Action: querycache.ActionCreate,
		ID:     created.ID,
	})
	if groupID != "" {
		s.recordMembership(ctx, caps, created.ID, querycache.ActionCreate)
	}

	consultant, err := s.consultantRepo.FindByID(ctx, created.ID)
	if err != nil {
		return dto.ConsultantResponse{}, translate(err, "consultant")
	}
	return dto.NewConsultantResponse(consultant), nil
}

// UpdateConsultant replaces a consultant's fields. The membership is written
// only when the requested group differs from the current one.
func (s *ConsultantService) UpdateConsultant(ctx context.Context, caps Capabilities, id string, req dto.ConsultantRequest) (dto.ConsultantResponse, error) {
	if !caps.CanMutateWork() {
		return dto.ConsultantResponse{}, forbidden("edit consultants")
	}
	consultant, err := s.consultantRepo.FindByID(ctx, id)
	if err != nil {
		return dto.ConsultantResponse{}, translate(err, "consultant")
	}
	groupID, err := s.checkGroup(ctx, req.GroupID)
	if err != nil {
		return dto.ConsultantResponse{}, err
	}

	currentGroup := ""
	if g := consultant.Group(); g != nil {
		currentGroup = g.ID
	} else if consultant.Membership != nil {
		currentGroup = consultant.Membership.GroupID
	}
	groupChanged := currentGroup != groupID

	consultant.Name = strings.TrimSpace(req.Name)
	consultant.Email = strings.TrimSpace(req.Email)
	consultant.Phone = req.Phone
	consultant.CompanyName = req.CompanyName

	if err := s.consultantRepo.Update(ctx, consultant, groupChanged, &groupID); err != nil {
		return dto.ConsultantResponse{}, translate(err, "consultant")
	}

	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityConsultant,
		Action: querycache.ActionUpdate,
		ID:     id,
	})
	if groupChanged {
		action := querycache.ActionUpdate
		if groupID == "" {
			action = querycache.ActionDelete
		}
		s.recordMembership(ctx, caps, id, action)
	}

	updated, err := s.consultantRepo.FindByID(ctx, id)
	if err != nil {
		return dto.ConsultantResponse{}, translate(err, "consultant")
	}
	return dto.NewConsultantResponse(updated), nil
}

func (s *ConsultantService) recordMembership(ctx context.Context, caps Capabilities, consultantID string, action querycache.Action) {
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity:  querycache.EntityGroupMembership,
		Action:  action,
		ID:      consultantID,
		Parents: map[querycache.Entity]string{querycache.EntityConsultant: consultantID},
	})
}

// DeleteConsultant removes a consultant, its membership and its assignments
func (s *ConsultantService) DeleteConsultant(ctx context.Context, caps Capabilities, id string) error {
	if !caps.CanMutateWork() {
		return forbidden("delete consultants")
	}
	if err := s.consultantRepo.Delete(ctx, id); err != nil {
		return translate(err, "consultant")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityConsultant,
		Action: querycache.ActionDelete,
		ID:     id,
	})
	return nil
}

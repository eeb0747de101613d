package services

import (
	"context"
	"strings"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/models"
	"github.com/studio-desk/repositories"
)

// ConsultantGroupService handles consultant groups. Group members are
// derived from membership rows.
type ConsultantGroupService struct {
	groupRepo      *repositories.ConsultantGroupRepository
	consultantRepo *repositories.ConsultantRepository
	cache          *querycache.Cache
	changes        *ChangeRecorder
}

func NewConsultantGroupService(
	groupRepo *repositories.ConsultantGroupRepository,
	consultantRepo *repositories.ConsultantRepository,
	cache *querycache.Cache,
	changes *ChangeRecorder,
) *ConsultantGroupService {
	return &ConsultantGroupService{
		groupRepo:      groupRepo,
		consultantRepo: consultantRepo,
		cache:          cache,
		changes:        changes,
	}
}

// ListGroups returns every group with its member consultants
func (s *ConsultantGroupService) ListGroups(ctx context.Context, caps Capabilities) ([]dto.GroupResponse, error) {
	if !caps.CanViewConsultants() {
		return nil, forbidden("view consultant groups")
	}
	return querycache.Fetch(ctx, s.cache, querycache.ListKey(querycache.EntityConsultantGroup), s.loadGroups)
}

func (s *ConsultantGroupService) loadGroups(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.groupRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	consultants, err := s.consultantRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	members := make(map[string][]dto.ConsultantResponse)
	for _, c := range consultants {
		if c.Membership == nil {
			continue
		}
		members[c.Membership.GroupID] = append(members[c.Membership.GroupID], dto.NewConsultantResponse(c))
	}

	resp := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		m := members[g.ID]
		if m == nil {
			m = []dto.ConsultantResponse{}
		}
		resp = append(resp, dto.GroupResponse{ConsultantGroup: g, Members: m})
	}
	return resp, nil
}

func (s *ConsultantGroupService) CreateGroup(ctx context.Context, caps Capabilities, req dto.GroupRequest) (models.ConsultantGroup, error) {
	if !caps.CanMutateWork() {
		return models.ConsultantGroup{}, forbidden("create consultant groups")
	}
	group, err := s.groupRepo.Create(ctx, models.ConsultantGroup{
		Name:   strings.TrimSpace(req.Name),
		UserID: caps.UserID,
	})
	if err != nil {
		return models.ConsultantGroup{}, translate(err, "consultant group")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityConsultantGroup,
		Action: querycache.ActionCreate,
		ID:     group.ID,
	})
	return group, nil
}

func (s *ConsultantGroupService) RenameGroup(ctx context.Context, caps Capabilities, id string, req dto.GroupRequest) (models.ConsultantGroup, error) {
	if !caps.CanMutateWork() {
		return models.ConsultantGroup{}, forbidden("edit consultant groups")
	}
	if err := s.groupRepo.Rename(ctx, id, strings.TrimSpace(req.Name)); err != nil {
		return models.ConsultantGroup{}, translate(err, "consultant group")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityConsultantGroup,
		Action: querycache.ActionUpdate,
		ID:     id,
	})
	group, err := s.groupRepo.FindByID(ctx, id)
	return group, translate(err, "consultant group")
}

// DeleteGroup removes a group. Its consultants become ungrouped.
func (s *ConsultantGroupService) DeleteGroup(ctx context.Context, caps Capabilities, id string) error {
	if !caps.CanMutateWork() {
		return forbidden("delete consultant groups")
	}
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return translate(err, "consultant group")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityConsultantGroup,
		Action: querycache.ActionDelete,
		ID:     id,
	})
	return nil
}

package services

import (
	"context"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/lib/aggregate"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/models"
	"github.com/studio-desk/repositories"
)

// AdminService backs the admin dashboard
type AdminService struct {
	userRepo       *repositories.UserRepository
	projectRepo    *repositories.ProjectRepository
	consultantRepo *repositories.ConsultantRepository
	groupRepo      *repositories.ConsultantGroupRepository
	cache          *querycache.Cache
	changes        *ChangeRecorder
}

func NewAdminService(
	userRepo *repositories.UserRepository,
	projectRepo *repositories.ProjectRepository,
	consultantRepo *repositories.ConsultantRepository,
	groupRepo *repositories.ConsultantGroupRepository,
	cache *querycache.Cache,
	changes *ChangeRecorder,
) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		projectRepo:    projectRepo,
		consultantRepo: consultantRepo,
		groupRepo:      groupRepo,
		cache:          cache,
		changes:        changes,
	}
}

// GetStats returns exact counts of the main entities
func (s *AdminService) GetStats(ctx context.Context, caps Capabilities) (dto.AdminStatsResponse, error) {
	if !caps.CanViewAdmin() {
		return dto.AdminStatsResponse{}, forbidden("view admin statistics")
	}
	return querycache.Fetch(ctx, s.cache, querycache.ListKey(querycache.EntityAdminStats), s.loadStats)
}

func (s *AdminService) loadStats(ctx context.Context) (dto.AdminStatsResponse, error) {
	var (
		stats dto.AdminStatsResponse
		err   error
	)
	if stats.Projects, err = s.projectRepo.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Consultants, err = s.consultantRepo.Count(ctx); err != nil {
		return stats, err
	}
	if stats.ConsultantGroups, err = s.groupRepo.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Users, err = s.userRepo.Count(ctx); err != nil {
		return stats, err
	}
	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		return stats, err
	}
	stats.ProjectsByStatus = aggregate.ProjectStatusCounts(projects)
	return stats, nil
}

// ListUsers returns every profile
func (s *AdminService) ListUsers(ctx context.Context, caps Capabilities) ([]models.User, error) {
	if !caps.CanViewAdmin() {
		return nil, forbidden("list users")
	}
	return querycache.Fetch(ctx, s.cache, querycache.ListKey(querycache.EntityProfile), s.userRepo.FindAll)
}

// UpdateUser changes a profile's user type and admin flag
func (s *AdminService) UpdateUser(ctx context.Context, caps Capabilities, id string, req dto.UpdateUserRequest) (models.User, error) {
	if !caps.CanViewAdmin() {
		return models.User{}, forbidden("edit users")
	}
	if !req.UserType.Valid() {
		return models.User{}, invalid("unknown user type %q", req.UserType)
	}
	isAdmin := req.IsAdmin != nil && *req.IsAdmin
	if id == caps.UserID && !isAdmin {
		return models.User{}, invalid("admins cannot revoke their own admin flag")
	}

	if err := s.userRepo.UpdateRole(ctx, id, req.UserType, isAdmin); err != nil {
		return models.User{}, translate(err, "user")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityProfile,
		Action: querycache.ActionUpdate,
		ID:     id,
	})
	user, err := s.userRepo.FindByID(ctx, id)
	return user, translate(err, "user")
}

// DeleteUser removes a profile; the user's open sessions stop verifying on their next request
func (s *AdminService) DeleteUser(ctx context.Context, caps Capabilities, id string) error {
	if !caps.CanViewAdmin() {
		return forbidden("delete users")
	}
	if id == caps.UserID {
		return invalid("admins cannot delete their own profile")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return translate(err, "user")
	}
	s.changes.Record(ctx, caps.UserID, querycache.Change{
		Entity: querycache.EntityProfile,
		Action: querycache.ActionDelete,
		ID:     id,
	})
	return nil
}

package services

import (
	"errors"
	"testing"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/models"
)

func TestProjectAffordancesByRole(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@studio.test", models.UserTypeStaff, false)
	other := env.user(t, "other@studio.test", models.UserTypeStaff, false)
	admin := env.user(t, "admin@studio.test", models.UserTypeStaff, true)
	client := env.user(t, "client@acme.test", models.UserTypeClient, false)

	assigned := env.project(t, owner, dto.CreateProjectRequest{Name: "Museum", AssignedClientID: &client.UserID})
	hidden := env.project(t, owner, dto.CreateProjectRequest{Name: "Depot"})

	cases := []struct {
		name      string
		caps      Capabilities
		wantCount int
		wantEdit  bool
	}{
		{"owner", owner, 2, true},
		{"other staff", other, 2, false},
		{"admin", admin, 2, true},
		{"client", client, 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := env.svc.Projects.ListProjects(env.ctx, tc.caps, dto.ProjectFilter{})
			if err != nil {
				t.Fatal(err)
			}
			if int(list.TotalCount) != tc.wantCount {
				t.Fatalf("expected %d projects, got %d", tc.wantCount, list.TotalCount)
			}
			for _, p := range list.Projects {
				if p.CanEdit != tc.wantEdit || p.CanDelete != tc.wantEdit {
					t.Fatalf("project %s: canEdit=%v canDelete=%v, want %v", p.Name, p.CanEdit, p.CanDelete, tc.wantEdit)
				}
			}
		})
	}

	if _, err := env.svc.Projects.GetProject(env.ctx, client, hidden.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client reading unassigned project: expected forbidden, got %v", err)
	}
	if _, err := env.svc.Projects.GetProject(env.ctx, client, assigned.ID); err != nil {
		t.Fatalf("client reading assigned project: %v", err)
	}
	if _, err := env.svc.Projects.UpdateProject(env.ctx, client, assigned.ID, dto.UpdateProjectRequest{Name: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client update: expected forbidden, got %v", err)
	}
	if err := env.svc.Projects.DeleteProject(env.ctx, other, assigned.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner delete: expected forbidden, got %v", err)
	}
	if _, err := env.svc.Projects.CreateProject(env.ctx, client, dto.CreateProjectRequest{Name: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client create: expected forbidden, got %v", err)
	}
}

func TestProjectUpdateRefreshesCachedQueries(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@studio.test", models.UserTypeStaff, false)
	project := env.project(t, owner, dto.CreateProjectRequest{Name: "Pavilion"})

	if _, err := env.svc.Projects.ListProjects(env.ctx, owner, dto.ProjectFilter{}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Projects.GetProject(env.ctx, owner, project.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := env.svc.Projects.UpdateProject(env.ctx, owner, project.ID, dto.UpdateProjectRequest{
		Name:          "Pavilion II",
		EstimatedCost: ptr(5000.0),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := env.svc.Projects.GetProject(env.ctx, owner, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Pavilion II" || got.EstimatedCost != 5000 {
		t.Fatalf("stale project returned: %+v", got.Project)
	}
	list, err := env.svc.Projects.ListProjects(env.ctx, owner, dto.ProjectFilter{Search: "ii"})
	if err != nil {
		t.Fatal(err)
	}
	if list.TotalCount != 1 || list.Projects[0].Name != "Pavilion II" {
		t.Fatalf("stale list returned: %+v", list)
	}
}

func TestProjectStatusAndAssignment(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@studio.test", models.UserTypeStaff, false)
	other := env.user(t, "other@studio.test", models.UserTypeStaff, false)
	client := env.user(t, "client@acme.test", models.UserTypeClient, false)
	project := env.project(t, owner, dto.CreateProjectRequest{})

	if project.Status != models.ProjectStatusPlanning {
		t.Fatalf("new projects start in Planning, got %q", project.Status)
	}
	updated, err := env.svc.Projects.UpdateStatus(env.ctx, other, project.ID, models.ProjectStatusOnHold)
	if err != nil {
		t.Fatalf("staff status change: %v", err)
	}
	if updated.Status != models.ProjectStatusOnHold {
		t.Fatalf("status not applied: %q", updated.Status)
	}
	if _, err := env.svc.Projects.UpdateStatus(env.ctx, other, project.ID, "Archived"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid status error, got %v", err)
	}

	if _, err := env.svc.Projects.UpdateAssignment(env.ctx, owner, project.ID, dto.UpdateProjectAssignmentRequest{
		AssignedClientID: &other.UserID,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("staff user as client: expected invalid input, got %v", err)
	}
	withClient, err := env.svc.Projects.UpdateAssignment(env.ctx, owner, project.ID, dto.UpdateProjectAssignmentRequest{
		AssignedStaffID:  &other.UserID,
		AssignedClientID: &client.UserID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if withClient.AssignedClientID == nil || *withClient.AssignedClientID != client.UserID {
		t.Fatalf("client not attached: %+v", withClient.Project)
	}
	if _, err := env.svc.Projects.GetProject(env.ctx, client, project.ID); err != nil {
		t.Fatalf("attached client should see project: %v", err)
	}
}

func TestDeleteProjectRemovesAssignments(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@studio.test", models.UserTypeStaff, false)
	project := env.project(t, owner, dto.CreateProjectRequest{})
	consultant := env.consultant(t, owner, "ada", nil)
	toggled, err := env.svc.Assignments.Toggle(env.ctx, owner, project.ID, consultant.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Tasks.CreateTask(env.ctx, owner, toggled.Assignment.ID, dto.TaskRequest{Title: "Brief"}); err != nil {
		t.Fatal(err)
	}

	if err := env.svc.Projects.DeleteProject(env.ctx, owner, project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := env.count(t, &models.ProjectConsultant{}, "project_id = ?", project.ID); n != 0 {
		t.Fatalf("assignments left behind: %d", n)
	}
	if n := env.count(t, &models.Task{}, "project_consultant_id = ?", toggled.Assignment.ID); n != 0 {
		t.Fatalf("tasks left behind: %d", n)
	}
	if _, err := env.svc.Projects.GetProject(env.ctx, owner, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListProjectsPagination(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@studio.test", models.UserTypeStaff, false)
	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		env.project(t, owner, dto.CreateProjectRequest{Name: name})
	}

	list, err := env.svc.Projects.ListProjects(env.ctx, owner, dto.ProjectFilter{
		SortBy:    "name",
		SortOrder: "asc",
		Page:      2,
		PageSize:  2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if list.TotalCount != 3 || list.TotalPages != 2 {
		t.Fatalf("unexpected totals %+v", list)
	}
	if len(list.Projects) != 1 || list.Projects[0].Name != "Charlie" {
		t.Fatalf("unexpected page %+v", list.Projects)
	}
}

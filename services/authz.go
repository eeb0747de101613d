package services

import (
	"go.uber.org/zap"

	"github.com/studio-desk/models"
)

// Capabilities is the caller's role, resolved once per request and passed
// to every service call.
type Capabilities struct {
	UserID   string          `json:"userId"`
	IsAdmin  bool            `json:"isAdmin"`
	UserType models.UserType `json:"userType"`
}

func (c Capabilities) IsClient() bool { return c.UserType == models.UserTypeClient }
func (c Capabilities) IsStaff() bool  { return c.UserType == models.UserTypeStaff }

// CanManageProject gates editing and deleting a project's fields.
func (c Capabilities) CanManageProject(p models.Project) bool {
	return c.IsAdmin || (c.IsStaff() && p.UserID == c.UserID)
}

func (c Capabilities) CanCreateProject() bool   { return c.IsAdmin || c.IsStaff() }
func (c Capabilities) CanViewConsultants() bool { return !c.IsClient() }
func (c Capabilities) CanViewAdmin() bool       { return c.IsAdmin }

// CanMutateWork gates writes to consultants, groups, assignments, invoices,
// tasks and project status.
func (c Capabilities) CanMutateWork() bool { return c.IsAdmin || c.IsStaff() }

// CanViewProject lets clients see only the projects they are attached to.
func (c Capabilities) CanViewProject(p models.Project) bool {
	return !c.IsClient() || p.IsAssignedClient(c.UserID)
}

// Tabs lists the navigation sections visible to the caller.
func (c Capabilities) Tabs() []string {
	tabs := []string{"projects"}
	if c.CanViewConsultants() {
		tabs = append(tabs, "consultants")
	}
	if c.CanViewAdmin() {
		tabs = append(tabs, "admin")
	}
	return tabs
}

// Authorizer turns a verified profile into the request's capabilities.
type Authorizer struct {
	logger *zap.Logger
}

func NewAuthorizer(logger *zap.Logger) *Authorizer {
	return &Authorizer{logger: logger}
}

// FromProfile reads the admin flag and user type off user. An unknown user
// type yields non-admin staff rather than denying access.
func (a *Authorizer) FromProfile(user models.User) Capabilities {
	if !user.UserType.Valid() {
		a.logger.Warn("Unknown user type, defaulting to staff",
			zap.String("user_id", user.ID), zap.String("user_type", string(user.UserType)))
		return Capabilities{UserID: user.ID, UserType: models.UserTypeStaff}
	}
	return Capabilities{
		UserID:   user.ID,
		IsAdmin:  user.IsAdmin,
		UserType: user.UserType,
	}
}

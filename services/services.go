package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studio-desk/lib/events"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/repositories"
)

// Options carries the shared infrastructure every service is built on.
type Options struct {
	DB         *gorm.DB
	Cache      *querycache.Cache
	Publisher  events.Publisher
	Logger     *zap.Logger
	JWTSecret  string
	SessionTTL time.Duration
}

// Services groups the application services.
type Services struct {
	Auth        *AuthService
	AuthEvents  *AuthEvents
	Authz       *Authorizer
	Projects    *ProjectService
	Consultants *ConsultantService
	Groups      *ConsultantGroupService
	Assignments *AssignmentService
	Invoices    *InvoiceService
	Tasks       *TaskService
	Admin       *AdminService

	subscriptions []*Subscription
}

// New wires repositories and services over opts.
func New(opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	users := repositories.NewUserRepository(opts.DB)
	sessions := repositories.NewSessionRepository(opts.DB)
	projects := repositories.NewProjectRepository(opts.DB)
	consultants := repositories.NewConsultantRepository(opts.DB)
	groups := repositories.NewConsultantGroupRepository(opts.DB)
	assignments := repositories.NewAssignmentRepository(opts.DB)
	invoices := repositories.NewInvoiceRepository(opts.DB)
	tasks := repositories.NewTaskRepository(opts.DB)

	changes := NewChangeRecorder(opts.Cache, publisher, logger)
	bus := NewAuthEvents()

	s := &Services{
		AuthEvents: bus,
		Auth:       NewAuthService(users, sessions, bus, changes, opts.JWTSecret, ttl, logger),
		Authz:      NewAuthorizer(logger),
	}
	s.Projects = NewProjectService(projects, users, assignments, invoices, tasks, opts.Cache, changes, logger)
	s.Consultants = NewConsultantService(consultants, groups, assignments, opts.Cache, changes, logger)
	s.Groups = NewConsultantGroupService(groups, consultants, opts.Cache, changes)
	s.Assignments = NewAssignmentService(assignments, consultants, invoices, tasks, s.Projects, opts.Cache, changes, logger)
	s.Invoices = NewInvoiceService(invoices, s.Assignments, changes)
	s.Tasks = NewTaskService(tasks, s.Assignments, changes)
	s.Admin = NewAdminService(users, projects, consultants, groups, opts.Cache, changes)

	s.subscriptions = append(s.subscriptions,
		bus.Subscribe(func(ctx context.Context, c AuthChange) {
			event := events.Event{Type: "auth", Action: string(c.Event), UserID: c.UserID, ID: c.SessionID, OccurredAt: c.At}
			if err := publisher.Publish(ctx, events.RoutingKey("auth", string(c.Event), ""), event); err != nil {
				logger.Warn("Failed to publish auth event", zap.String("event", string(c.Event)), zap.Error(err))
			}
		}),
	)
	return s
}

// Close detaches the internal auth event listeners.
func (s *Services) Close() {
	for _, sub := range s.subscriptions {
		sub.Unsubscribe()
	}
	s.subscriptions = nil
}

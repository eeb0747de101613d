package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studio-desk/lib/events"
	"github.com/studio-desk/middleware"
	"github.com/studio-desk/services"
)

// Dependencies are the shared pieces the v1 routes are built from.
type Dependencies struct {
	Services      *services.Services
	DB            *gorm.DB
	Redis         *redis.Client
	Publisher     events.Publisher
	Guard         middleware.OnceAcquirer
	Logger        *zap.Logger
	Version       string
	SecureCookies bool
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, deps Dependencies) {
	svc := deps.Services

	NewHealthController(deps.DB, deps.Redis, deps.Publisher, deps.Version).RegisterRoutes(router)

	authController := NewAuthController(svc.Auth, deps.SecureCookies)
	authController.RegisterPublicRoutes(router)

	authRouter := router.Group("")
	authRouter.Use(middleware.AuthMiddleware(svc.Auth, svc.Authz, deps.Logger))
	if deps.Guard != nil {
		authRouter.Use(middleware.Idempotency(deps.Guard))
	}

	authController.RegisterRoutes(authRouter)
	NewProjectController(svc.Projects).RegisterRoutes(authRouter)
	NewAssignmentController(svc.Assignments).RegisterRoutes(authRouter)
	NewInvoiceController(svc.Invoices).RegisterRoutes(authRouter)
	NewTaskController(svc.Tasks).RegisterRoutes(authRouter)

	staffRouter := authRouter.Group("")
	staffRouter.Use(middleware.RequireStaff())
	NewConsultantController(svc.Consultants).RegisterRoutes(staffRouter)
	NewConsultantGroupController(svc.Groups).RegisterRoutes(staffRouter)

	adminGroup := authRouter.Group("/admin")
	adminGroup.Use(middleware.AdminMiddleware())
	NewAdminController(svc.Admin).RegisterRoutes(adminGroup)
}

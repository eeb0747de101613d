package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/studio-desk/database"
	"github.com/studio-desk/lib/events"
)

// brokerConn is implemented by publishers that hold a live broker connection.
type brokerConn interface {
	IsConnected() bool
}

// HealthController reports liveness and dependency readiness
type HealthController struct {
	db      *gorm.DB
	rdb     *redis.Client
	broker  events.Publisher
	version string
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, broker events.Publisher, version string) *HealthController {
	return &HealthController{db: db, rdb: rdb, broker: broker, version: version}
}

func (h *HealthController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.Ready)
}

// HealthCheck handles the health check endpoint
func (h *HealthController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "studio-desk-api",
		"version": h.version,
	})
}

// Ready checks the database and, when configured, Redis and the broker.
func (h *HealthController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	ready := true
	if err := database.Ping(ctx, h.db); err != nil {
		checks["database"] = err.Error()
		ready = false
	}
	if h.rdb != nil {
		checks["redis"] = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			// The cache degrades to direct loads, so Redis does not gate readiness.
			checks["redis"] = err.Error()
		}
	}
	if conn, ok := h.broker.(brokerConn); ok {
		// Change events are best effort, so the broker is reported but never gates.
		checks["broker"] = "ok"
		if !conn.IsConnected() {
			checks["broker"] = "disconnected"
		}
	}

	status := http.StatusOK
	state := "ok"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "error"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

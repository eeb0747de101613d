package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/studio-desk/database"
	"github.com/studio-desk/dto"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/models"
)

type testEnv struct {
	svc   *Services
	db    *gorm.DB
	redis *miniredis.Miniredis
	ctx   context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "studio.db")), zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := New(Options{
		DB:         db,
		Cache:      querycache.New(rdb, time.Minute, nil, zap.NewNop()),
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
	})
	t.Cleanup(svc.Close)

	return &testEnv{svc: svc, db: db, redis: mr, ctx: context.Background()}
}

func (e *testEnv) user(t *testing.T, email string, userType models.UserType, admin bool) Capabilities {
	t.Helper()
	u := models.User{Email: email, Password: "x", UserType: userType, IsAdmin: admin}
	if err := e.db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return Capabilities{UserID: u.ID, UserType: userType, IsAdmin: admin}
}

func (e *testEnv) project(t *testing.T, owner Capabilities, req dto.CreateProjectRequest) dto.ProjectResponse {
	t.Helper()
	if req.Name == "" {
		req.Name = "Harbour Library"
	}
	p, err := e.svc.Projects.CreateProject(e.ctx, owner, req)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func (e *testEnv) consultant(t *testing.T, caps Capabilities, name string, groupID *string) dto.ConsultantResponse {
	t.Helper()
	c, err := e.svc.Consultants.CreateConsultant(e.ctx, caps, dto.ConsultantRequest{
		Name:    name,
		Email:   name + "@eng.test",
		GroupID: groupID,
	})
	if err != nil {
		t.Fatalf("create consultant: %v", err)
	}
	return c
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func ptr[T any](v T) *T { return &v }

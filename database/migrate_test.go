package database

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"

	"github.com/studio-desk/models"
)

func openSQLite(t *testing.T, name string) *DBConnection {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".db")
	conn, err := NewDBConnection(name, sqlite.Open(path), zap.NewNop())
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	if err := conn.Migrate(); err != nil {
		t.Fatalf("migrate %s: %v", name, err)
	}
	return conn
}

func TestMigrateDataBetweenDatabases(t *testing.T) {
	source := openSQLite(t, "source")
	target := openSQLite(t, "target")

	user := models.User{Email: "owner@studio.test", Password: "x", FullName: "Owner"}
	if err := source.DB.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	project := models.Project{Name: "Library", UserID: user.ID, EstimatedCost: 1200}
	if err := source.DB.Create(&project).Error; err != nil {
		t.Fatal(err)
	}
	consultant := models.Consultant{Name: "Ada", Email: "ada@eng.test", UserID: user.ID}
	if err := source.DB.Create(&consultant).Error; err != nil {
		t.Fatal(err)
	}
	assignment := models.ProjectConsultant{ProjectID: project.ID, ConsultantID: consultant.ID}
	if err := source.DB.Create(&assignment).Error; err != nil {
		t.Fatal(err)
	}
	task := models.Task{ProjectConsultantID: assignment.ID, Title: "Survey"}
	if err := source.DB.Create(&task).Error; err != nil {
		t.Fatal(err)
	}

	if err := MigrateDataBetweenDatabases(source, target); err != nil {
		t.Fatalf("migrate data: %v", err)
	}

	var copied models.Project
	if err := target.DB.First(&copied, "id = ?", project.ID).Error; err != nil {
		t.Fatalf("project not copied: %v", err)
	}
	if copied.Status != models.ProjectStatusPlanning || copied.EstimatedCost != 1200 {
		t.Fatalf("project fields not preserved: %+v", copied)
	}

	var taskCount int64
	target.DB.Model(&models.Task{}).Where("project_consultant_id = ?", assignment.ID).Count(&taskCount)
	if taskCount != 1 {
		t.Fatalf("expected 1 task copied, got %d", taskCount)
	}
}

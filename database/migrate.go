package database

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studio-desk/models"
)

const copyBatchSize = 500

// DBConnection represents a database connection
type DBConnection struct {
	DB     *gorm.DB
	Name   string
	Models []interface{}
	log    *zap.Logger
}

// NewDBConnection opens a named connection used by the copy tool.
func NewDBConnection(name string, dialector gorm.Dialector, log *zap.Logger) (*DBConnection, error) {
	if dialector == nil {
		return nil, errors.New("database dialector cannot be nil")
	}
	db, err := Open(dialector, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", name, err)
	}
	log.Info("Connected to database", zap.String("name", name))

	return &DBConnection{
		DB:     db,
		Name:   name,
		Models: Models(),
		log:    log,
	}, nil
}

// Migrate migrates the database schema
func (c *DBConnection) Migrate() error {
	c.log.Info("Migrating database schema", zap.String("name", c.Name))
	if err := c.DB.AutoMigrate(c.Models...); err != nil {
		return fmt.Errorf("failed to migrate %s database: %w", c.Name, err)
	}
	return nil
}

// MigrateDataBetweenDatabases copies every table from source to target in
// dependency order. Soft-deleted rows are copied too.
func MigrateDataBetweenDatabases(source, target *DBConnection) error {
	steps := []struct {
		name string
		copy func() (int, error)
	}{
		{"users", func() (int, error) { return copyTable[models.User](source.DB, target.DB) }},
		{"sessions", func() (int, error) { return copyTable[models.Session](source.DB, target.DB) }},
		{"projects", func() (int, error) { return copyTable[models.Project](source.DB, target.DB) }},
		{"consultant groups", func() (int, error) { return copyTable[models.ConsultantGroup](source.DB, target.DB) }},
		{"consultants", func() (int, error) { return copyTable[models.Consultant](source.DB, target.DB) }},
		{"group memberships", func() (int, error) {
			return copyTable[models.ConsultantGroupMembership](source.DB, target.DB)
		}},
		{"assignments", func() (int, error) { return copyTable[models.ProjectConsultant](source.DB, target.DB) }},
		{"invoices", func() (int, error) { return copyTable[models.Invoice](source.DB, target.DB) }},
		{"tasks", func() (int, error) { return copyTable[models.Task](source.DB, target.DB) }},
	}

	for _, step := range steps {
		n, err := step.copy()
		if err != nil {
			return fmt.Errorf("failed to migrate %s: %w", step.name, err)
		}
		source.log.Info("Migrated table", zap.String("table", step.name), zap.Int("rows", n))
	}
	return nil
}

func copyTable[T any](source, target *gorm.DB) (int, error) {
	var rows []T
	if err := source.Unscoped().Find(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := target.Session(&gorm.Session{SkipHooks: true}).CreateInBatches(&rows, copyBatchSize).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

package database

import (
	"context"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type Database struct {
	db          *gorm.DB
	projectRepo *ProjectRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:          db,
		projectRepo: NewProjectRepo(db),
	}
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

// Migrate creates or alters the tables to match the models.
func (d Database) Migrate(ctx context.Context) error {
	if err := d.db.WithContext(ctx).AutoMigrate(&models.Project{}); err != nil {
		return errs.NewDatabaseError("migrate", "projects", err)
	}
	return nil
}

// Reset drops every managed table and recreates it empty.
func (d Database) Reset(ctx context.Context) error {
	migrator := d.db.WithContext(ctx).Migrator()
	if err := migrator.DropTable(&models.Project{}); err != nil {
		return errs.NewDatabaseError("drop", "projects", err)
	}
	return d.Migrate(ctx)
}

package database

import (
	"context"
	"errors"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const projectEntity = "project"

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns every project ordered by id.
func (r *ProjectRepo) FindAll(ctx context.Context) ([]*models.Project, error) {
	projects := []*models.Project{}
	if err := r.db.WithContext(ctx).Order("id").Find(&projects).Error; err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	return projects, nil
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// Add inserts project and fills in the id and created_at the store assigned.
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return errs.NewDatabaseError("create", projectEntity, err)
	}
	return nil
}

// Update applies only the columns present in patch and returns the stored row.
func (r *ProjectRepo) Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error) {
	db := r.db.WithContext(ctx)
	if len(patch) == 0 {
		return r.first(db.Clauses(dbresolver.Write), id)
	}

	result := db.Model(&models.Project{}).Where("id = ?", id).Updates(patch.Columns())
	if result.Error != nil {
		return nil, errs.NewDatabaseError("update", projectEntity, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewNotFound(projectEntity)
	}

	return r.first(db.Clauses(dbresolver.Write), id)
}

// Delete removes a project permanently. It reports false when no row matched.
func (r *ProjectRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Project{}, id)
	if result.Error != nil {
		return false, errs.NewDatabaseError("delete", projectEntity, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ProjectRepo) first(db *gorm.DB, id int64) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound(projectEntity)
		}
		return nil, errs.NewDatabaseError("find", projectEntity, err)
	}
	return &project, nil
}

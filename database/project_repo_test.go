package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var projectColumns = []string{
	"id", "title", "short_description", "tech_stack", "github_url", "live_url",
	"problem_statement", "why_built", "architecture", "implementation_details",
	"challenges", "learnings", "future_improvements", "created_at",
}

func newMockRepo(t *testing.T) (*ProjectRepo, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := newGormConfig(logger.Default.LogMode(logger.Silent))
	cfg.SkipDefaultTransaction = true

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
	require.NoError(t, err)

	return NewProjectRepo(db), mock
}

func projectRow(rows *sqlmock.Rows, id int64, title string, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(id, title, "short", "Go", nil, nil, nil, nil, nil, nil, nil, nil, nil, createdAt)
}

func TestProjectRepo_Add(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	project := &models.Project{Title: "X", ShortDescription: "Y"}
	require.NoError(t, repo.Add(context.Background(), project))
	require.Equal(t, int64(1), project.ID)
	require.False(t, project.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_AddStampsStoredPrecision(t *testing.T) {
	repo, mock := newMockRepo(t)

	for i := int64(1); i <= 20; i++ {
		mock.ExpectQuery(`INSERT INTO "projects"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(i))

		project := &models.Project{Title: "X", ShortDescription: "Y"}
		require.NoError(t, repo.Add(context.Background(), project))
		require.Equal(t, project.CreatedAt.Truncate(time.Microsecond), project.CreatedAt)
		require.Equal(t, time.UTC, project.CreatedAt.Location())
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_AddDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO "projects"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "projects_pkey"`))

	err := repo.Add(context.Background(), &models.Project{Title: "X", ShortDescription: "Y"})
	require.True(t, errs.IsAlreadyExists(err))
}

func TestProjectRepo_FindAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(projectColumns)
	projectRow(rows, 1, "first", now)
	projectRow(rows, 2, "second", now)
	mock.ExpectQuery(`SELECT \* FROM "projects" ORDER BY id`).WillReturnRows(rows)

	projects, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, int64(1), projects[0].ID)
	require.Equal(t, "second", projects[1].Title)
	require.Equal(t, "Go", *projects[0].TechStack)
	require.Nil(t, projects[0].GithubURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_FindAllEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "projects"`).WillReturnRows(sqlmock.NewRows(projectColumns))

	projects, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, projects)
	require.Empty(t, projects)
}

func TestProjectRepo_FindByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE "projects"."id" = \$1`).
		WillReturnRows(projectRow(sqlmock.NewRows(projectColumns), 7, "seven", time.Now()))

	project, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), project.ID)
	require.Equal(t, "seven", project.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_FindByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "projects"`).WillReturnRows(sqlmock.NewRows(projectColumns))

	_, err := repo.FindByID(context.Background(), 99)
	require.True(t, errs.IsNotFound(err))
}

func TestProjectRepo_FindByIDQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "projects"`).WillReturnError(errors.New("syntax error at or near"))

	_, err := repo.FindByID(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrDatabaseQuery)
}

func TestProjectRepo_UpdateTouchesOnlyPatchedColumns(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "projects" SET "title"=\$1 WHERE id = \$2`).
		WithArgs("New", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE "projects"."id" = \$1`).
		WillReturnRows(projectRow(sqlmock.NewRows(projectColumns), 7, "New", time.Now()))

	project, err := repo.Update(context.Background(), 7, models.ProjectPatch{}.Set("title", "New"))
	require.NoError(t, err)
	require.Equal(t, "New", project.Title)
	require.Equal(t, "short", project.ShortDescription)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_UpdateMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "projects" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), 42, models.ProjectPatch{}.Clear("live_url"))
	require.True(t, errs.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_UpdateEmptyPatchRereads(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WillReturnRows(projectRow(sqlmock.NewRows(projectColumns), 3, "same", time.Now()))

	project, err := repo.Update(context.Background(), 3, models.ProjectPatch{})
	require.NoError(t, err)
	require.Equal(t, "same", project.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM "projects" WHERE "projects"."id" = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "projects"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), 5)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), 5)
	require.NoError(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_DeleteConnectionError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM "projects"`).WillReturnError(errors.New("connection refused"))

	_, err := repo.Delete(context.Background(), 5)
	require.True(t, errs.IsDatabaseConnectionError(err))
}

func TestDatabase_ResetDropFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DROP TABLE IF EXISTS "projects"`).
		WillReturnError(errors.New("permission denied for table projects"))

	err := New(repo.db).Reset(context.Background())
	require.ErrorIs(t, err, errs.ErrDatabaseQuery)

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Failed to drop projects", apiErr.Details)
}

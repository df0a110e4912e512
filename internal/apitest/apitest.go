// Package apitest provides an in-memory project store and a ready router for
// tests that exercise the HTTP API end to end.
package apitest

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/security"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminUsername = "admin"
	AdminPassword = "correct horse battery staple"
)

// ProjectStore is a goroutine-safe in-memory api.ProjectStore.
type ProjectStore struct {
	mu       sync.Mutex
	projects map[int64]models.Project
	nextID   int64
	calls    int
	now      func() time.Time
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: map[int64]models.Project{},
		now:      time.Now,
	}
}

// Calls reports how many store operations ran.
func (s *ProjectStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *ProjectStore) FindAll(_ context.Context) ([]*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	ids := make([]int64, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	projects := make([]*models.Project, 0, len(ids))
	for _, id := range ids {
		project := s.projects[id]
		projects = append(projects, &project)
	}
	return projects, nil
}

func (s *ProjectStore) FindByID(_ context.Context, id int64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	project, ok := s.projects[id]
	if !ok {
		return nil, errs.NewNotFound("project")
	}
	return &project, nil
}

func (s *ProjectStore) Add(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	s.nextID++
	project.ID = s.nextID
	project.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
	s.projects[project.ID] = *project
	return nil
}

func (s *ProjectStore) Update(_ context.Context, id int64, patch models.ProjectPatch) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	project, ok := s.projects[id]
	if !ok {
		return nil, errs.NewNotFound("project")
	}

	// Merge through the JSON form, whose keys match the column names.
	fields := map[string]any{}
	encoded, err := json.Marshal(project)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	for column, value := range patch.Columns() {
		fields[column] = value
	}
	encoded, err = json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var updated models.Project
	if err := json.Unmarshal(encoded, &updated); err != nil {
		return nil, err
	}

	s.projects[id] = updated
	return &updated, nil
}

func (s *ProjectStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if _, ok := s.projects[id]; !ok {
		return false, nil
	}
	delete(s.projects, id)
	return true, nil
}

// NewAuthService returns an AuthService for AdminUsername/AdminPassword using
// the cheapest bcrypt cost.
func NewAuthService(t testing.TB, opts ...security.TokenOption) *services.AuthService {
	t.Helper()

	hash, err := security.HashPasswordWithCost(AdminPassword, bcrypt.MinCost)
	require.NoError(t, err)

	secret := []byte("test-signing-secret")
	issuer, err := security.NewTokenIssuer(secret, opts...)
	require.NoError(t, err)

	return services.NewAuthService(config.AdminCredentials{
		Username:      AdminUsername,
		PasswordHash:  hash,
		SigningSecret: secret,
	}, issuer)
}

// NewServer starts an httptest server running the full router over a fresh
// in-memory store. It is closed when the test ends.
func NewServer(t testing.TB) (*httptest.Server, *ProjectStore) {
	t.Helper()

	store := NewProjectStore()
	server := httptest.NewServer(api.NewRouter(store, NewAuthService(t),
		api.WithConfig(map[string]string{"LOG_REQUESTS": "false"})))
	t.Cleanup(server.Close)

	return server, store
}

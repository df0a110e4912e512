package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpupo63/portfolio-backend/internal/apitest"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestClient_LoginAndCRUD(t *testing.T) {
	server, _ := apitest.NewServer(t)
	ctx := context.Background()
	c := New(server.URL + "/")

	require.False(t, c.LoggedIn())
	require.NoError(t, c.Login(ctx, apitest.AdminUsername, apitest.AdminPassword))
	require.True(t, c.LoggedIn())

	created, err := c.CreateProject(ctx, models.ProjectCreate{
		Title:            "CLI",
		ShortDescription: "Admin shell",
		TechStack:        strPtr("Go"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.False(t, created.CreatedAt.IsZero())

	fetched, err := c.GetProject(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Title, fetched.Title)
	require.Equal(t, "Go", *fetched.TechStack)

	updated, err := c.UpdateProject(ctx, created.ID, models.ProjectPatch{}.Set("title", "Admin CLI").Clear("tech_stack"))
	require.NoError(t, err)
	require.Equal(t, "Admin CLI", updated.Title)
	require.Equal(t, "Admin shell", updated.ShortDescription)
	require.Nil(t, updated.TechStack)

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	msg, err := c.DeleteProject(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Project deleted successfully", msg)

	_, err = c.GetProject(ctx, created.ID)
	require.True(t, IsNotFound(err))

	_, err = c.DeleteProject(ctx, created.ID)
	require.True(t, IsNotFound(err))
}

func TestClient_MutationsNeedLogin(t *testing.T) {
	server, store := apitest.NewServer(t)
	ctx := context.Background()
	c := New(server.URL)

	_, err := c.CreateProject(ctx, models.ProjectCreate{Title: "X", ShortDescription: "Y"})
	require.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.UpdateProject(ctx, 1, models.ProjectPatch{}.Set("title", "Z"))
	require.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.DeleteProject(ctx, 1)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	require.Zero(t, store.Calls())

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestClient_FailedLogin(t *testing.T) {
	server, _ := apitest.NewServer(t)
	c := New(server.URL)

	err := c.Login(context.Background(), apitest.AdminUsername, "wrong")
	require.True(t, IsUnauthorized(err))
	require.False(t, c.LoggedIn())
}

func TestClient_UnauthorizedClearsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "admin", r.PostForm.Get("username"))
			assert.Equal(t, "pw", r.PostForm.Get("password"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"stale","token_type":"bearer"}`))
			return
		}
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid access token: unauthorized","status":"error","field":"authorization"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	require.NoError(t, c.Login(context.Background(), "admin", "pw"))
	require.True(t, c.LoggedIn())

	_, err := c.DeleteProject(context.Background(), 3)
	require.True(t, IsUnauthorized(err))
	require.False(t, c.LoggedIn())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "authorization", apiErr.Field)
}

func TestClient_ValidationErrorSurfaces(t *testing.T) {
	server, _ := apitest.NewServer(t)
	ctx := context.Background()
	c := New(server.URL)
	require.NoError(t, c.Login(ctx, apitest.AdminUsername, apitest.AdminPassword))

	_, err := c.CreateProject(ctx, models.ProjectCreate{Title: "X"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.Equal(t, "short_description", apiErr.Field)
	require.True(t, c.LoggedIn())
}

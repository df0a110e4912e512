package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/rpupo63/portfolio-backend/internal/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	status int
	header http.Header
	body   map[string]any
	raw    []byte
}

func do(t *testing.T, method, target, token, contentType, body string) response {
	t.Helper()

	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{status: resp.StatusCode, header: resp.Header, raw: raw}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.body))
	}
	return out
}

func login(t *testing.T, baseURL, username, password string) response {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	return do(t, http.MethodPost, baseURL+"/auth/login", "", "application/x-www-form-urlencoded", form.Encode())
}

func adminToken(t *testing.T, baseURL string) string {
	t.Helper()
	resp := login(t, baseURL, apitest.AdminUsername, apitest.AdminPassword)
	require.Equal(t, http.StatusOK, resp.status)
	return resp.body["access_token"].(string)
}

func TestStatusEndpoints(t *testing.T) {
	server, _ := apitest.NewServer(t)

	resp := do(t, http.MethodGet, server.URL+"/", "", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "ok", resp.body["status"])

	resp = do(t, http.MethodGet, server.URL+"/health", "", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "healthy", resp.body["status"])
	require.Contains(t, resp.header.Get("Content-Type"), "application/json")
}

func TestAdminScenario(t *testing.T) {
	server, store := apitest.NewServer(t)

	// wrong password
	resp := login(t, server.URL, apitest.AdminUsername, "wrong")
	require.Equal(t, http.StatusUnauthorized, resp.status)

	// correct password
	resp = login(t, server.URL, apitest.AdminUsername, apitest.AdminPassword)
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "bearer", resp.body["token_type"])
	token, ok := resp.body["access_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	// create without a token never reaches the store
	calls := store.Calls()
	resp = do(t, http.MethodPost, server.URL+"/projects/", "", "application/json", `{"title":"X","short_description":"Y"}`)
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, "Bearer", resp.header.Get("WWW-Authenticate"))
	require.Equal(t, calls, store.Calls())

	// create with the token
	resp = do(t, http.MethodPost, server.URL+"/projects/", token, "application/json", `{"title":"X","short_description":"Y"}`)
	require.Equal(t, http.StatusCreated, resp.status)
	require.Equal(t, "X", resp.body["title"])
	require.Equal(t, "Y", resp.body["short_description"])
	require.EqualValues(t, 1, resp.body["id"])
	require.NotEmpty(t, resp.body["created_at"])
	require.Contains(t, resp.body, "tech_stack")
	require.Nil(t, resp.body["tech_stack"])
}

func TestLoginRejectionsAreIdentical(t *testing.T) {
	server, _ := apitest.NewServer(t)

	wrongUser := login(t, server.URL, "root", apitest.AdminPassword)
	wrongPassword := login(t, server.URL, apitest.AdminUsername, "nope")

	require.Equal(t, http.StatusUnauthorized, wrongUser.status)
	require.Equal(t, wrongUser.status, wrongPassword.status)
	require.Equal(t, string(wrongUser.raw), string(wrongPassword.raw))
	require.Equal(t, "invalid credentials: unauthorized", wrongUser.body["error"])
}

func TestLoginMissingField(t *testing.T) {
	server, _ := apitest.NewServer(t)

	resp := do(t, http.MethodPost, server.URL+"/auth/login", "", "application/x-www-form-urlencoded", "username=admin")
	require.Equal(t, http.StatusUnprocessableEntity, resp.status)
	require.Equal(t, "password", resp.body["field"])

	resp = do(t, http.MethodPost, server.URL+"/auth/login", "", "application/json", `{"username":"admin","password":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.status)
	require.Equal(t, "username", resp.body["field"])
}

func TestProjectLifecycle(t *testing.T) {
	server, _ := apitest.NewServer(t)
	token := adminToken(t, server.URL)

	resp := do(t, http.MethodGet, server.URL+"/projects", "", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	require.JSONEq(t, `[]`, string(resp.raw))

	resp = do(t, http.MethodPost, server.URL+"/projects", token, "application/json",
		`{"title":"Portfolio","short_description":"This site","tech_stack":"Go","live_url":"https://example.com"}`)
	require.Equal(t, http.StatusCreated, resp.status)
	created := resp.raw
	id := "1"

	// create then get returns the same record
	resp = do(t, http.MethodGet, server.URL+"/projects/"+id, "", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	require.JSONEq(t, string(created), string(resp.raw))

	// a partial update touches only the given field
	resp = do(t, http.MethodPatch, server.URL+"/projects/"+id+"/", token, "application/json", `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Renamed", resp.body["title"])
	assert.Equal(t, "This site", resp.body["short_description"])
	assert.Equal(t, "Go", resp.body["tech_stack"])
	assert.Equal(t, "https://example.com", resp.body["live_url"])

	// null clears an optional field, PUT behaves like PATCH
	resp = do(t, http.MethodPut, server.URL+"/projects/"+id, token, "application/json", `{"live_url":null}`)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Nil(t, resp.body["live_url"])
	assert.Equal(t, "Renamed", resp.body["title"])

	resp = do(t, http.MethodGet, server.URL+"/projects/", "", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(resp.raw, &listed))
	require.Len(t, listed, 1)

	resp = do(t, http.MethodDelete, server.URL+"/projects/"+id, token, "", "")
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "Project deleted successfully", resp.body["message"])

	resp = do(t, http.MethodGet, server.URL+"/projects/"+id, "", "", "")
	require.Equal(t, http.StatusNotFound, resp.status)
	require.Equal(t, "project not found", resp.body["error"])

	resp = do(t, http.MethodDelete, server.URL+"/projects/"+id, token, "", "")
	require.Equal(t, http.StatusNotFound, resp.status)
}

func TestProjectMutationsRequireValidToken(t *testing.T) {
	server, _ := apitest.NewServer(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		for _, tc := range []struct{ method, path string }{
			{http.MethodPost, "/projects"},
			{http.MethodPatch, "/projects/1"},
			{http.MethodPut, "/projects/1"},
			{http.MethodDelete, "/projects/1"},
		} {
			resp := do(t, tc.method, server.URL+tc.path, token, "application/json", `{"title":"X"}`)
			require.Equal(t, http.StatusUnauthorized, resp.status, "%s %s with %q", tc.method, tc.path, token)
			require.Equal(t, "error", resp.body["status"])
		}
	}
}

func TestProjectValidationErrors(t *testing.T) {
	server, _ := apitest.NewServer(t)
	token := adminToken(t, server.URL)

	resp := do(t, http.MethodPost, server.URL+"/projects", token, "application/json", `{"title":"X","short_description":"Y"}`)
	require.Equal(t, http.StatusCreated, resp.status)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		field  string
	}{
		{"create missing title", http.MethodPost, "/projects", `{"short_description":"Y"}`, http.StatusUnprocessableEntity, "title"},
		{"create blank title", http.MethodPost, "/projects", `{"title":"  ","short_description":"Y"}`, http.StatusUnprocessableEntity, "title"},
		{"create unknown field", http.MethodPost, "/projects", `{"title":"X","short_description":"Y","stars":5}`, http.StatusUnprocessableEntity, "stars"},
		{"create wrong type", http.MethodPost, "/projects", `{"title":5,"short_description":"Y"}`, http.StatusUnprocessableEntity, "title"},
		{"create broken json", http.MethodPost, "/projects", `{"title":`, http.StatusBadRequest, ""},
		{"update unknown column", http.MethodPatch, "/projects/1", `{"id":9}`, http.StatusUnprocessableEntity, "id"},
		{"update clears required", http.MethodPatch, "/projects/1", `{"title":null}`, http.StatusUnprocessableEntity, "title"},
		{"update wrong type", http.MethodPatch, "/projects/1", `{"learnings":3}`, http.StatusUnprocessableEntity, "learnings"},
		{"update bad id", http.MethodPatch, "/projects/abc", `{"title":"Z"}`, http.StatusUnprocessableEntity, "project_id"},
		{"update missing project", http.MethodPatch, "/projects/99", `{"title":"Z"}`, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, server.URL+tt.path, token, "application/json", tt.body)
			require.Equal(t, tt.status, resp.status, string(resp.raw))
			if tt.field != "" {
				require.Equal(t, tt.field, resp.body["field"])
			}
		})
	}

	resp = do(t, http.MethodGet, server.URL+"/projects/abc", "", "", "")
	require.Equal(t, http.StatusUnprocessableEntity, resp.status)
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	server, _ := apitest.NewServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://portfolio.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Less(t, resp.StatusCode, 300)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

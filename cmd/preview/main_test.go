package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runProjects(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd, err := newRootCommand()
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"projects"}, args...))
	err = rootCmd.Execute()
	return out.String(), err
}

func TestProjectsUsesServerFromEnv(t *testing.T) {
	srv := projectsServer(t, `{"success":true,"projects":[]}`)
	t.Setenv("REELBOARD_SERVER_URL", srv.URL+"/")

	out, err := runProjects(t)
	require.NoError(t, err)
	assert.Equal(t, "No projects yet on "+srv.URL+"\n", out)
}

func TestServerFlagOverridesEnv(t *testing.T) {
	srv := projectsServer(t, `{"success":true,"projects":[{"id":"p1","topic":"slow mornings at home","scenes":[{"id":1,"text":"one","duration":4}],"status":"script_generated","createdAt":"2026-01-02T03:04:05Z"}]}`)
	t.Setenv("REELBOARD_SERVER_URL", "http://127.0.0.1:1")

	out, err := runProjects(t, "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "script_generated")
	assert.Contains(t, out, "2026-01-02 03:04")
	assert.Contains(t, out, "slow mornings at home")
}

func TestProjectsErrorNamesServer(t *testing.T) {
	t.Setenv("REELBOARD_SERVER_URL", "http://127.0.0.1:1/")

	_, err := runProjects(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list projects on http://127.0.0.1:1:")
}

package httpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skills-mcp/pkg/catalog"
	skillserver "github.com/jingkaihe/skills-mcp/pkg/mcp/server"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
	"github.com/jingkaihe/skills-mcp/pkg/version"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	root := t.TempDir()
	path := filepath.Join(root, "deploy", "SKILL.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("---\nname: Deploy\ndescription: ship code\n---\nDeploy body\n"), 0o644))

	loader, err := skills.NewLoader(skills.WithRoot(root))
	require.NoError(t, err)
	tools, err := skillserver.New(catalog.NewService(loader))
	require.NoError(t, err)

	s, err := NewServer(tools, &Config{Host: "127.0.0.1", Port: 0})
	require.NoError(t, err)
	return s
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		errContains string
	}{
		{name: "valid", config: Config{Host: "localhost", Port: 8765}},
		{name: "ephemeral port", config: Config{Host: "localhost", Port: 0}},
		{name: "empty host", config: Config{Port: 8765}, errContains: "host cannot be empty"},
		{name: "port too large", config: Config{Host: "localhost", Port: 70000}, errContains: "port must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, version.Name, resp.Name)
	assert.Equal(t, []string{"list_skills", "get_skill", "match_skills"}, resp.Tools)
}

func TestRPC(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantText   string
		wantError  bool
	}{
		{
			name:       "get skill",
			body:       `{"tool":"get_skill","arguments":{"name":"deploy"}}`,
			wantStatus: http.StatusOK,
			wantText:   "---\nname: Deploy\ndescription: ship code\n---\nDeploy body\n",
		},
		{
			name:       "list skills without arguments",
			body:       `{"tool":"list_skills"}`,
			wantStatus: http.StatusOK,
			wantText:   "# Available Skills\n\n## Deploy\nship code\n\n",
		},
		{
			name:       "invalid arguments",
			body:       `{"tool":"match_skills","arguments":{}}`,
			wantStatus: http.StatusOK,
			wantText:   "Error: invalid arguments",
			wantError:  true,
		},
		{
			name:       "unknown tool",
			body:       `{"tool":"delete_skill","arguments":{}}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "malformed body",
			body:       `{"tool":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp RPCResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Len(t, resp.Content, 1)
			assert.Equal(t, "text", resp.Content[0].Type)
			assert.Contains(t, resp.Content[0].Text, tt.wantText)
			assert.Equal(t, tt.wantError, resp.IsError)
		})
	}
}

func TestRPCMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/rpc", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSSEEndpoint(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	var endpoint string
	for endpoint == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data:") {
			endpoint = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	assert.Contains(t, endpoint, "/message?sessionId=")
}

func TestStartAndShutdown(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

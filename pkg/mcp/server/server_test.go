package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skills-mcp/pkg/catalog"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
)

type failingRepository struct{}

func (failingRepository) LoadAll(context.Context) ([]*skills.Skill, error) {
	return nil, errors.New("failed to traverse skills: permission denied")
}

func newTestServer(t *testing.T, opts ...Option) (*Server, string) {
	t.Helper()

	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "deploy", "SKILL.md"), "---\nname: Deploy\ndescription: ship code\n---\n# Deploy\n")
	writeSkill(t, filepath.Join(root, "test", "SKILL.md"), "---\nname: Test\ndescription: run code tests\n---\n# Test\n")

	loader, err := skills.NewLoader(skills.WithRoot(root))
	require.NoError(t, err)

	s, err := New(catalog.NewService(loader), opts...)
	require.NoError(t, err)
	return s, root
}

func writeSkill(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestToolNames(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, []string{ListSkillsTool, GetSkillTool, MatchSkillsTool}, s.ToolNames())

	withKeyword, _ := newTestServer(t, WithKeywordTool(true))
	assert.Equal(t, []string{ListSkillsTool, GetSkillTool, MatchSkillsTool, GetSkillByKeywordTool}, withKeyword.ToolNames())
}

func TestGenerateSchema(t *testing.T) {
	raw, err := json.Marshal(GenerateSchema[GetSkillInput]())
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.Equal(t, []any{"name"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	name, ok := props["name"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", name["type"])
	assert.Equal(t, "The name of the skill to retrieve", name["description"])
}

func TestCallTool(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		result, err := s.CallTool(ctx, ListSkillsTool, nil)
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "# Available Skills\n\n## Deploy\nship code\n\n## Test\nrun code tests\n\n", resultText(t, result))
	})

	t.Run("get", func(t *testing.T) {
		result, err := s.CallTool(ctx, GetSkillTool, map[string]any{"name": "deploy"})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "---\nname: Deploy\ndescription: ship code\n---\n# Deploy\n", resultText(t, result))
	})

	t.Run("get unknown name is not an error", func(t *testing.T) {
		result, err := s.CallTool(ctx, GetSkillTool, map[string]any{"name": "nope"})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "Skill 'nope' not found.", resultText(t, result))
	})

	t.Run("match", func(t *testing.T) {
		result, err := s.CallTool(ctx, MatchSkillsTool, map[string]any{"task": "deploy code"})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		text := resultText(t, result)
		assert.Contains(t, text, "## 1. Deploy (score: 3.0) [medium]")
		assert.Contains(t, text, "## 2. Test (score: 1.0) [low]")
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := s.CallTool(ctx, GetSkillByKeywordTool, map[string]any{"keyword": "dep"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrToolNotFound))
	})
}

func TestCallToolRejectsInvalidArguments(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		tool string
		args map[string]any
	}{
		{name: "missing name", tool: GetSkillTool, args: map[string]any{}},
		{name: "wrong type", tool: GetSkillTool, args: map[string]any{"name": 42}},
		{name: "unknown property", tool: MatchSkillsTool, args: map[string]any{"task": "x", "limit": 3}},
		{name: "missing task", tool: MatchSkillsTool, args: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.CallTool(ctx, tt.tool, tt.args)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), "Error: invalid arguments")
		})
	}
}

func TestCallToolKeyword(t *testing.T) {
	s, _ := newTestServer(t, WithKeywordTool(true))

	result, err := s.CallTool(context.Background(), GetSkillByKeywordTool, map[string]any{"keyword": "TES"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "---\nname: Test\ndescription: run code tests\n---\n# Test\n", resultText(t, result))

	result, err = s.CallTool(context.Background(), GetSkillByKeywordTool, map[string]any{"keyword": "ops"})
	require.NoError(t, err)
	assert.Equal(t, "No skills found with keyword 'ops'.", resultText(t, result))
}

func TestCallToolReportsFailures(t *testing.T) {
	s, err := New(catalog.NewService(failingRepository{}))
	require.NoError(t, err)

	for _, name := range []string{ListSkillsTool, MatchSkillsTool} {
		args := map[string]any{}
		if name == MatchSkillsTool {
			args["task"] = "deploy"
		}
		result, err := s.CallTool(context.Background(), name, args)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "Error: failed to traverse skills: permission denied", resultText(t, result))
	}
}

func TestHandleMessage(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	t.Run("tools/list", func(t *testing.T) {
		resp := s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
		raw, err := json.Marshal(resp)
		require.NoError(t, err)

		var decoded struct {
			Result struct {
				Tools []struct {
					Name        string          `json:"name"`
					Description string          `json:"description"`
					InputSchema json.RawMessage `json:"inputSchema"`
				} `json:"tools"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(raw, &decoded))

		names := make([]string, 0, len(decoded.Result.Tools))
		for _, tool := range decoded.Result.Tools {
			names = append(names, tool.Name)
			assert.NotEmpty(t, tool.Description)
			assert.NotEmpty(t, tool.InputSchema)
		}
		assert.ElementsMatch(t, []string{ListSkillsTool, GetSkillTool, MatchSkillsTool}, names)
	})

	t.Run("tools/call", func(t *testing.T) {
		resp := s.MCPServer().HandleMessage(ctx, json.RawMessage(
			`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_skill","arguments":{"name":"TEST"}}}`))
		raw, err := json.Marshal(resp)
		require.NoError(t, err)

		var decoded struct {
			Result struct {
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
				IsError bool `json:"isError"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		require.Len(t, decoded.Result.Content, 1)
		assert.Equal(t, "text", decoded.Result.Content[0].Type)
		assert.Contains(t, decoded.Result.Content[0].Text, "# Test")
		assert.False(t, decoded.Result.IsError)
	})
}

func TestCallsSeeFilesystemChanges(t *testing.T) {
	s, root := newTestServer(t)
	ctx := context.Background()

	writeSkill(t, filepath.Join(root, "lint.md"), "---\nname: Lint\ndescription: check style\n---\n")

	result, err := s.CallTool(ctx, GetSkillTool, map[string]any{"name": "lint"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "check style")
}

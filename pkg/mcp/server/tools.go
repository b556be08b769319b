package server

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skills-mcp/pkg/catalog"
)

// Tool names advertised to MCP clients
const (
	ListSkillsTool        = "list_skills"
	GetSkillTool          = "get_skill"
	MatchSkillsTool       = "match_skills"
	GetSkillByKeywordTool = "get_skill_by_keyword"
)

// ListSkillsInput is the argument object of list_skills
type ListSkillsInput struct{}

// GetSkillInput is the argument object of get_skill
type GetSkillInput struct {
	Name string `json:"name" jsonschema:"description=The name of the skill to retrieve"`
}

// MatchSkillsInput is the argument object of match_skills
type MatchSkillsInput struct {
	Task string `json:"task" jsonschema:"description=The task description to match skills against"`
}

// GetSkillByKeywordInput is the argument object of get_skill_by_keyword
type GetSkillByKeywordInput struct {
	Keyword string `json:"keyword" jsonschema:"description=Keyword to search for in skill names"`
}

type toolHandler func(ctx context.Context, svc *catalog.Service, args json.RawMessage) (string, error)

// toolDefinition is one entry of the static tool table
type toolDefinition struct {
	name        string
	description string
	schema      *jsonschema.Schema
	handler     toolHandler
	optional    bool // registered only when keyword lookup is enabled
}

// GenerateSchema reflects the JSON schema of a tool input struct
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T

	return reflector.Reflect(v)
}

// decodeArgs unmarshals validated arguments into the tool input struct
func decodeArgs[T any](args json.RawMessage) (T, error) {
	var input T
	if err := json.Unmarshal(args, &input); err != nil {
		return input, errors.Wrap(err, "failed to decode arguments")
	}
	return input, nil
}

var toolTable = []toolDefinition{
	{
		name:        ListSkillsTool,
		description: "List all available skills with their names and descriptions",
		schema:      GenerateSchema[ListSkillsInput](),
		handler: func(ctx context.Context, svc *catalog.Service, _ json.RawMessage) (string, error) {
			return svc.ListSkills(ctx)
		},
	},
	{
		name:        GetSkillTool,
		description: "Get the full content of a specific skill by name",
		schema:      GenerateSchema[GetSkillInput](),
		handler: func(ctx context.Context, svc *catalog.Service, args json.RawMessage) (string, error) {
			input, err := decodeArgs[GetSkillInput](args)
			if err != nil {
				return "", err
			}
			return svc.GetSkill(ctx, input.Name)
		},
	},
	{
		name:        MatchSkillsTool,
		description: "Match skills to a task description. Returns the most relevant skills for the given task.",
		schema:      GenerateSchema[MatchSkillsInput](),
		handler: func(ctx context.Context, svc *catalog.Service, args json.RawMessage) (string, error) {
			input, err := decodeArgs[MatchSkillsInput](args)
			if err != nil {
				return "", err
			}
			return svc.MatchSkills(ctx, input.Task)
		},
	},
	{
		name:        GetSkillByKeywordTool,
		description: "Get a skill by keyword in its name",
		schema:      GenerateSchema[GetSkillByKeywordInput](),
		handler: func(ctx context.Context, svc *catalog.Service, args json.RawMessage) (string, error) {
			input, err := decodeArgs[GetSkillByKeywordInput](args)
			if err != nil {
				return "", err
			}
			return svc.FindSkill(ctx, input.Keyword)
		},
		optional: true,
	},
}

// enabledTools returns the tool table entries served with the given options
func enabledTools(keywordTool bool) []toolDefinition {
	tools := make([]toolDefinition, 0, len(toolTable))
	for _, t := range toolTable {
		if t.optional && !keywordTool {
			continue
		}
		tools = append(tools, t)
	}
	return tools
}

package main

import (
	"context"
	"fmt"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skills-mcp/pkg/config"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
)

type ListConfig struct {
	Filter string
	Raw    bool
}

func NewListConfig() *ListConfig {
	return &ListConfig{
		Filter: "",
		Raw:    false,
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skills",
	Long: `List every skill in the skills directory with its description.

Examples:
  skills-mcp list
  skills-mcp list --filter 'deploy*'
  skills-mcp list --raw          # the exact list_skills tool output`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		listConfig := getListConfigFromFlags(cmd)

		cfg, err := config.GetConfigFromViper()
		if err != nil {
			exitWithError(cmd.Context(), err, "invalid configuration")
		}

		if err := runList(ctx, cfg, listConfig); err != nil {
			exitWithError(cmd.Context(), err, "failed to list skills")
		}
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().StringP("filter", "f", defaults.Filter, "Only show skills whose name matches this glob (e.g. 'deploy*', '{lint,test}')")
	listCmd.Flags().Bool("raw", defaults.Raw, "Print the list_skills tool output verbatim")
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()

	if filter, err := cmd.Flags().GetString("filter"); err == nil {
		config.Filter = filter
	}
	if raw, err := cmd.Flags().GetBool("raw"); err == nil {
		config.Raw = raw
	}

	return config
}

func runList(ctx context.Context, cfg config.Config, listConfig *ListConfig) error {
	loader, svc, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	if listConfig.Raw && listConfig.Filter == "" {
		text, err := svc.ListSkills(ctx)
		if err != nil {
			return err
		}
		presenter.Result(text)
		return nil
	}

	loaded, err := loader.LoadAll(ctx)
	if err != nil {
		return err
	}

	filtered, err := filterSkills(loaded, listConfig.Filter)
	if err != nil {
		return err
	}

	if len(filtered) == 0 {
		presenter.Info("No skills found.")
		return nil
	}

	presenter.Section(fmt.Sprintf("Skills in %s (%d)", loader.Root(), len(filtered)))
	for _, skill := range filtered {
		presenter.Skill(skill.Name, skill.Description)
	}
	return nil
}

// filterSkills keeps the skills whose name matches the glob pattern.
// An empty pattern keeps everything.
func filterSkills(all []*skills.Skill, pattern string) ([]*skills.Skill, error) {
	if pattern == "" {
		return all, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid filter pattern %q", pattern)
	}

	var matched []*skills.Skill
	for _, skill := range all {
		if g.Match(skill.Name) {
			matched = append(matched, skill)
		}
	}
	return matched, nil
}

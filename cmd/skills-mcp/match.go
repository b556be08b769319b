package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skills-mcp/pkg/config"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
)

var matchCmd = &cobra.Command{
	Use:   "match <task...>",
	Short: "Rank skills against a task description",
	Long: `Rank skills against a task description, exactly as the match_skills tool does.

Examples:
  skills-mcp match deploy the web app
  skills-mcp match --minimal "write release notes"
  skills-mcp match --locale zh --top-n 5 "refactor tests"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := config.GetConfigFromViper()
		if err != nil {
			exitWithError(cmd.Context(), err, "invalid configuration")
		}

		_, svc, err := newCatalog(cfg)
		if err != nil {
			exitWithError(cmd.Context(), err, "failed to load skills")
		}

		text, err := svc.MatchSkills(ctx, strings.Join(args, " "))
		if err != nil {
			exitWithError(cmd.Context(), err, "failed to match skills")
		}
		presenter.Result(text)
	},
}

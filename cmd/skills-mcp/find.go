package main

import (
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skills-mcp/pkg/config"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
)

var findCmd = &cobra.Command{
	Use:   "find <keyword>",
	Short: "Print the first skill whose name contains a keyword",
	Long: `Print the full document of the first skill, in load order, whose name contains
the keyword, ignoring case. The serve command exposes the same lookup as the
get_skill_by_keyword tool when started with --keyword-tool.`,
	Args: cobra.ExactArgs(1),
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

		text, err := svc.FindSkill(ctx, args[0])
		if err != nil {
			exitWithError(cmd.Context(), err, "failed to find skill")
		}
		presenter.Result(text)
	},
}

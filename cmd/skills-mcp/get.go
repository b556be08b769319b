package main

import (
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skills-mcp/pkg/config"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print the full document of a skill",
	Long: `Print the full document of the first skill whose name matches, ignoring case.
This is the same text the get_skill tool returns.`,
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

		text, err := svc.GetSkill(ctx, args[0])
		if err != nil {
			exitWithError(cmd.Context(), err, "failed to get skill")
		}
		presenter.Result(text)
	},
}

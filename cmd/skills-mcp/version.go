package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skills-mcp/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version information of skills-mcp in JSON format.`,
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()

		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(info.String())
			return
		}

		json, err := info.JSON()
		if err != nil {
			exitWithError(cmd.Context(), err, "failed to format version info")
		}
		fmt.Println(json)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print a single line instead of JSON")
}

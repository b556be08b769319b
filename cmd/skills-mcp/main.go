package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skills-mcp/pkg/catalog"
	"github.com/jingkaihe/skills-mcp/pkg/config"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
)

var rootCmd = &cobra.Command{
	Use:   "skills-mcp",
	Short: "Serve a directory of skill documents to MCP clients",
	Long: `skills-mcp loads markdown skill documents from a directory and exposes them
to MCP clients through three tools: list_skills, get_skill and match_skills.

The skills directory is re-read on every request, so edits show up immediately.
The other commands run the same queries from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Configure(viper.GetString("log_level"), viper.GetString("log_format")); err != nil {
			return err
		}
		return startTracing(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		stopTracing(cmd.Context())
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("skills-dir", skills.DefaultSkillsDir, "Directory containing skill documents")
	flags.StringSlice("exclude", nil, "Glob patterns, relative to the skills directory, to skip (e.g. 'drafts/**')")
	flags.String("locale", config.LocaleEnglish, "Language of result texts (en, zh)")
	flags.Bool("minimal", false, "List every match with its relevance instead of the ranked view")
	flags.Int("top-n", skills.DefaultTopN, "Number of matches shown in the ranked view")
	flags.String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String("log-format", "fmt", "Log format (fmt, json)")

	viper.BindPFlag("skills_dir", flags.Lookup("skills-dir"))
	viper.BindPFlag("exclude", flags.Lookup("exclude"))
	viper.BindPFlag("locale", flags.Lookup("locale"))
	viper.BindPFlag("minimal", flags.Lookup("minimal"))
	viper.BindPFlag("top_n", flags.Lookup("top-n"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
}

// newCatalog builds the loader and query service described by cfg
func newCatalog(cfg config.Config) (*skills.Loader, *catalog.Service, error) {
	loader, err := skills.NewLoader(cfg.LoaderOptions()...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create skills loader")
	}

	svc := catalog.NewService(loader,
		catalog.WithLocale(cfg.Locale),
		catalog.WithMinimal(cfg.Minimal),
		catalog.WithTopN(cfg.TopN),
	)
	return loader, svc, nil
}

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(withTracing(listCmd))
	rootCmd.AddCommand(withTracing(getCmd))
	rootCmd.AddCommand(withTracing(matchCmd))
	rootCmd.AddCommand(withTracing(findCmd))
	rootCmd.AddCommand(withTracing(inspectCmd))
	rootCmd.AddCommand(withTracing(doctorCmd))
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

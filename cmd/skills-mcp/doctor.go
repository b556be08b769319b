package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skills-mcp/pkg/config"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
)

type DoctorConfig struct {
	Strict bool
}

func NewDoctorConfig() *DoctorConfig {
	return &DoctorConfig{
		Strict: false,
	}
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the skills directory for problems",
	Long: `Load the skills directory and report everything that would be skipped or
shadowed: a missing directory, unreadable or undecodable files and skill names
used more than once. Lookups by name always resolve to the first skill loaded,
so later duplicates are unreachable through get_skill.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		doctorConfig := getDoctorConfigFromFlags(cmd)

		cfg, err := config.GetConfigFromViper()
		if err != nil {
			exitWithError(cmd.Context(), err, "invalid configuration")
		}

		problems, err := runDoctor(ctx, cfg)
		if err != nil {
			exitWithError(cmd.Context(), err, "failed to load skills")
		}
		if problems > 0 && doctorConfig.Strict {
			exitWithError(cmd.Context(), errors.Errorf("%d problems found", problems), "strict check failed")
		}
	},
}

func init() {
	defaults := NewDoctorConfig()
	doctorCmd.Flags().Bool("strict", defaults.Strict, "Exit with status 1 when any problem is found")
}

func getDoctorConfigFromFlags(cmd *cobra.Command) *DoctorConfig {
	config := NewDoctorConfig()

	if strict, err := cmd.Flags().GetBool("strict"); err == nil {
		config.Strict = strict
	}

	return config
}

// runDoctor prints the load report and returns the number of problems found
func runDoctor(ctx context.Context, cfg config.Config) (int, error) {
	loader, _, err := newCatalog(cfg)
	if err != nil {
		return 0, err
	}

	report, err := loader.Load(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to load %s", loader.Root())
	}

	presenter.Section("Skills directory")
	presenter.Field("root", report.Root)
	presenter.Field("skills", len(report.Skills))

	problems := 0
	if report.Warnings != nil {
		for _, w := range report.Warnings.Errors {
			presenter.Warning(w.Error())
			problems++
		}
	}

	for _, dup := range report.Duplicates() {
		presenter.Warning(fmt.Sprintf("duplicate skill name %q, lookups resolve to %s; also defined in %s",
			dup.Name, dup.Paths[0], strings.Join(dup.Paths[1:], ", ")))
		problems++
	}

	if problems == 0 {
		presenter.Success("No problems found")
	} else {
		presenter.Info(fmt.Sprintf("%d problem(s) found", problems))
	}
	return problems, nil
}

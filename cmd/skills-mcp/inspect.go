package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skills-mcp/pkg/config"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <name>",
	Short: "Show where a skill comes from and how it is structured",
	Long: `Show the file a skill was loaded from, every key of its header block and the
outline of its markdown headings.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := config.GetConfigFromViper()
		if err != nil {
			exitWithError(cmd.Context(), err, "invalid configuration")
		}

		if err := runInspect(ctx, cfg, args[0]); err != nil {
			exitWithError(cmd.Context(), err, "failed to inspect skill")
		}
	},
}

func runInspect(ctx context.Context, cfg config.Config, name string) error {
	_, svc, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	skill, found, err := svc.Lookup(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("skill %q not found", name)
	}

	headings, err := skills.Outline(skill)
	if err != nil {
		return errors.Wrap(err, "failed to parse skill body")
	}

	presenter.Section(skill.Name)
	presenter.Field("path", skill.Path)
	presenter.Field("description", skill.Description)
	presenter.Field("size", fmt.Sprintf("%d bytes", len(skill.Content)))

	keys := make([]string, 0, len(skill.Metadata))
	for k := range skill.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		presenter.Field("header", "none")
	} else {
		presenter.Field("header keys", strings.Join(keys, ", "))
	}

	if len(headings) == 0 {
		return nil
	}
	presenter.Result("")
	presenter.Section("Outline")
	for _, h := range headings {
		presenter.Result(strings.Repeat("  ", h.Level-1) + h.Text)
	}
	return nil
}

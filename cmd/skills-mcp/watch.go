package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skills-mcp/pkg/config"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	DebounceTime int
	Verbosity    string
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceTime: int(skills.DefaultDebounce / time.Millisecond),
		Verbosity:    "normal",
	}
}

// Validate validates the WatchConfig and returns an error if invalid
func (c *WatchConfig) Validate() error {
	switch c.Verbosity {
	case "quiet", "normal":
	default:
		return errors.Errorf("invalid verbosity level: %s, must be one of: quiet, normal", c.Verbosity)
	}

	if c.DebounceTime < 0 {
		return errors.Errorf("debounce time cannot be negative: %d", c.DebounceTime)
	}

	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the skill list again whenever the skills directory changes",
	Long: `Watch the skills directory and print the catalog each time a skill document
is added, edited, moved or removed. Useful while authoring skills to see
exactly what MCP clients will get from list_skills.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		watchConfig := getWatchConfigFromFlags(cmd)
		if err := watchConfig.Validate(); err != nil {
			exitWithError(cmd.Context(), err, "invalid configuration")
		}
		presenter.SetQuiet(watchConfig.Verbosity == "quiet")

		cfg, err := config.GetConfigFromViper()
		if err != nil {
			exitWithError(cmd.Context(), err, "invalid configuration")
		}

		if err := runWatch(ctx, cfg, watchConfig); err != nil {
			exitWithError(cmd.Context(), err, "watch failed")
		}
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().IntP("debounce", "d", defaults.DebounceTime, "Debounce time in milliseconds for file change events")
	watchCmd.Flags().StringP("verbosity", "v", defaults.Verbosity, "Verbosity level (quiet, normal)")
}

// getWatchConfigFromFlags extracts watch configuration from command flags
func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()

	if debounceTime, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounceTime
	}
	if verbosity, err := cmd.Flags().GetString("verbosity"); err == nil {
		config.Verbosity = verbosity
	}

	return config
}

func runWatch(ctx context.Context, cfg config.Config, watchConfig *WatchConfig) error {
	loader, svc, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	printList := func() {
		text, err := svc.ListSkills(ctx)
		if err != nil {
			presenter.Error(err, "failed to list skills")
			return
		}
		presenter.Result(text)
	}

	watcher := skills.NewWatcher(loader.Root(), time.Duration(watchConfig.DebounceTime)*time.Millisecond)
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	printList()
	presenter.Info(fmt.Sprintf("Watching %s for changes, press Ctrl+C to stop", loader.Root()))

	for event := range watcher.Events() {
		logger.G(ctx).WithFields(map[string]any{
			"file":      event.Path,
			"operation": event.Op.String(),
			"timestamp": event.Time,
		}).Debug("skills directory changed")

		presenter.Separator()
		presenter.Info(fmt.Sprintf("Change detected: %s (%s)", event.Path, event.Op))
		printList()
	}

	return nil
}

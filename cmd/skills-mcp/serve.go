package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skills-mcp/pkg/config"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/mcp/httpserver"
	skillserver "github.com/jingkaihe/skills-mcp/pkg/mcp/server"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server. By default it speaks MCP over stdin/stdout, which is what
MCP clients expect when they launch the server as a subprocess:

  {"mcpServers": {"skills": {"command": "skills-mcp", "args": ["serve", "--skills-dir", "/path/to/skills"]}}}

With --transport sse it listens on HTTP instead and serves:

  GET  /sse       MCP SSE stream
  POST /message   MCP messages for an SSE session
  POST /rpc       {"tool": "...", "arguments": {...}} for one-off tool calls
  GET  /healthz   liveness and the registered tool names`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		cfg, err := config.GetConfigFromViper()
		if err != nil {
			exitWithError(cmd.Context(), err, "invalid configuration")
		}

		if err := runServe(ctx, cfg); err != nil {
			exitWithError(cmd.Context(), err, "server failed")
		}
	},
}

func init() {
	serveCmd.Flags().String("transport", config.TransportStdio, "Transport to serve on (stdio, sse)")
	serveCmd.Flags().String("host", "localhost", "Host to bind for the sse transport")
	serveCmd.Flags().Int("port", 8765, "Port to bind for the sse transport")
	serveCmd.Flags().Bool("keyword-tool", false, "Also register the get_skill_by_keyword tool")

	viper.BindPFlag("transport", serveCmd.Flags().Lookup("transport"))
	viper.BindPFlag("http.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("http.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("keyword_tool", serveCmd.Flags().Lookup("keyword-tool"))
}

func runServe(ctx context.Context, cfg config.Config) error {
	loader, svc, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	tools, err := skillserver.New(svc, skillserver.WithKeywordTool(cfg.KeywordTool))
	if err != nil {
		return errors.Wrap(err, "failed to create MCP server")
	}

	logger.G(ctx).WithField("skills_dir", loader.Root()).WithField("transport", cfg.Transport).Info("starting skills MCP server")

	switch cfg.Transport {
	case config.TransportSSE:
		httpServer, err := httpserver.NewServer(tools, &httpserver.Config{
			Host: cfg.HTTP.Host,
			Port: cfg.HTTP.Port,
		})
		if err != nil {
			return err
		}
		presenter.Info(fmt.Sprintf("Serving MCP on http://%s:%d/sse", cfg.HTTP.Host, cfg.HTTP.Port))
		presenter.Info("Press Ctrl+C to stop the server")
		return httpServer.Start(ctx)

	default:
		if presenter.IsTerminal(os.Stdin) {
			presenter.Warning("stdin is a terminal: serve expects an MCP client to talk JSON-RPC on stdin")
		}
		return tools.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
}

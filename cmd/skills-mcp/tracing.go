package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
	"github.com/jingkaihe/skills-mcp/pkg/telemetry"
	"github.com/jingkaihe/skills-mcp/pkg/version"
)

var (
	tracer = telemetry.Tracer("skills-mcp.cli")

	shutdownTracing = func(context.Context) error { return nil }

	osExit = os.Exit
)

// initTracing initializes the OpenTelemetry tracing system
func initTracing(ctx context.Context) (func(context.Context) error, error) {
	config := telemetry.Config{
		Enabled:        viper.GetBool("tracing.enabled"),
		ServiceName:    viper.GetString("tracing.service_name"),
		ServiceVersion: version.Get().Version,
		SamplerType:    viper.GetString("tracing.sampler"),
		SamplerRatio:   viper.GetFloat64("tracing.ratio"),
	}

	return telemetry.InitTracer(ctx, config)
}

func startTracing(ctx context.Context) error {
	shutdown, err := initTracing(ctx)
	if err != nil {
		return err
	}
	shutdownTracing = shutdown
	return nil
}

func stopTracing(ctx context.Context) {
	if err := shutdownTracing(ctx); err != nil {
		logger.G(ctx).WithError(err).Warn("failed to shut down tracing")
	}
}

// exit ends the command span and flushes tracing, then terminates the process
func exit(ctx context.Context, code int) {
	trace.SpanFromContext(ctx).End()
	stopTracing(ctx)
	osExit(code)
}

// exitWithError reports err, records it on the command span and exits with status 1
func exitWithError(ctx context.Context, err error, msg string) {
	presenter.Error(err, msg)

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)

	exit(ctx, 1)
}

// withTracing wraps a Cobra command with tracing
func withTracing(cmd *cobra.Command) *cobra.Command {
	originalRun := cmd.Run

	cmd.Run = func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		attrs := []attribute.KeyValue{
			attribute.String("command.name", cmd.Name()),
			attribute.String("command.path", cmd.CommandPath()),
			attribute.Int("args.count", len(args)),
		}

		cmd.Flags().Visit(func(flag *pflag.Flag) {
			attrs = append(attrs, attribute.String("flag."+flag.Name, flag.Value.String()))
		})

		ctx, span := tracer.Start(
			ctx,
			"cli.command",
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		cmd.SetContext(ctx)

		originalRun(cmd, args)

		span.SetStatus(codes.Ok, "")
	}

	return cmd
}

func init() {
	rootCmd.PersistentFlags().Bool("tracing-enabled", false, "Enable OpenTelemetry tracing")
	rootCmd.PersistentFlags().String("tracing-sampler", "ratio", "Tracing sampler type (always, never, ratio)")
	rootCmd.PersistentFlags().Float64("tracing-ratio", 1, "Sampling ratio when using ratio sampler")

	viper.BindPFlag("tracing.enabled", rootCmd.PersistentFlags().Lookup("tracing-enabled"))
	viper.BindPFlag("tracing.sampler", rootCmd.PersistentFlags().Lookup("tracing-sampler"))
	viper.BindPFlag("tracing.ratio", rootCmd.PersistentFlags().Lookup("tracing-ratio"))
}

// Package telemetry traces skill catalog queries with OpenTelemetry.
//
// The query layer opens one span per operation: skills.list, skills.get,
// skills.match and skills.find, each carrying the skills root and result
// counts as attributes. The CLI wraps every command in a cli.command span so
// catalog spans nest under the command that triggered them. Tracing is off by
// default; when enabled, spans are batched to an OTLP HTTP collector
// configured through the OTEL_EXPORTER_OTLP_* environment variables.
package telemetry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Sampler types accepted in Config.SamplerType
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
)

const exportBatchTimeout = time.Second

// Config controls whether catalog query spans are recorded and how many are kept
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	// ServiceName is reported as service.name on every span; DefaultTracerName when empty
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"-"`
	// SamplerType is one of always, never or ratio. Ratio sampling respects the
	// decision of a remote parent, so an MCP client that propagates trace
	// context keeps the server's skills.* spans in its own trace.
	SamplerType  string  `mapstructure:"sampler"`
	SamplerRatio float64 `mapstructure:"ratio"`
}

// Validate rejects sampler settings that would silently drop or keep every span
func (c Config) Validate() error {
	switch c.SamplerType {
	case "", SamplerAlways, SamplerNever:
	case SamplerRatio:
		if c.SamplerRatio < 0 || c.SamplerRatio > 1 {
			return errors.Errorf("tracing ratio must be between 0 and 1, got %v", c.SamplerRatio)
		}
	default:
		return errors.Errorf("unsupported tracing sampler %q, must be one of: %s, %s, %s",
			c.SamplerType, SamplerAlways, SamplerNever, SamplerRatio)
	}
	return nil
}

// InitTracer installs the global tracer provider used by the catalog and CLI
// spans. The returned function flushes pending spans and must be called
// before the process exits.
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultTracerName
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create resource")
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trace exporter")
	}

	provider := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter, trace.WithBatchTimeout(exportBatchTimeout)),
		trace.WithSampler(getSampler(cfg)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Shutting down the provider flushes the batcher and then the exporter
	return func(ctx context.Context) error {
		return errors.Wrap(provider.Shutdown(ctx), "failed to flush catalog spans")
	}, nil
}

func getSampler(cfg Config) trace.Sampler {
	switch cfg.SamplerType {
	case SamplerNever:
		return trace.NeverSample()
	case SamplerRatio:
		return trace.ParentBased(trace.TraceIDRatioBased(cfg.SamplerRatio))
	default:
		return trace.AlwaysSample()
	}
}

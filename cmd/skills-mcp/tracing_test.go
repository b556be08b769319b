package main

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestExitWithErrorFlushesTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	var (
		exitCode = -1
		flushed  bool
	)
	origExit, origShutdown := osExit, shutdownTracing
	t.Cleanup(func() {
		osExit, shutdownTracing = origExit, origShutdown
	})
	osExit = func(code int) { exitCode = code }
	shutdownTracing = func(context.Context) error {
		flushed = true
		return nil
	}

	ctx, _ := provider.Tracer("test").Start(context.Background(), "cli.command")
	exitWithError(ctx, errors.New("permission denied"), "failed to list skills")

	assert.Equal(t, 1, exitCode)
	assert.True(t, flushed, "tracing should be shut down before exiting")

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "cli.command", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "failed to list skills", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestExitEndsSpanWithoutError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	exitCode := -1
	origExit := osExit
	t.Cleanup(func() { osExit = origExit })
	osExit = func(code int) { exitCode = code }

	ctx, _ := provider.Tracer("test").Start(context.Background(), "cli.command")
	exit(ctx, 0)

	assert.Equal(t, 0, exitCode)
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
}

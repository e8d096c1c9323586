// Package tracing configures the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vaulttec/vault131/internal/log"
)

// Exporter names accepted by Setup.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "vault131"

// Options selects and configures the exporter.
type Options struct {
	Exporter string
	// File receives JSON spans for the stdout exporter. The TUI owns the
	// real stdout.
	File     string
	Endpoint string
	Insecure bool
	RunID    string
	Version  string
}

// Shutdown flushes pending spans and releases the exporter.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Setup installs a global tracer provider for the chosen exporter. With
// ExporterNone the global no-op provider is left in place.
func Setup(ctx context.Context, opts Options) (Shutdown, error) {
	var (
		exporter sdktrace.SpanExporter
		closer   func() error
		err      error
	)

	switch opts.Exporter {
	case "", ExporterNone:
		return noop, nil
	case ExporterStdout:
		if opts.File == "" {
			return noop, errors.New("stdout exporter needs a file")
		}
		if err := os.MkdirAll(filepath.Dir(opts.File), 0750); err != nil {
			return noop, fmt.Errorf("creating trace directory: %w", err)
		}
		f, ferr := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // configured path
		if ferr != nil {
			return noop, fmt.Errorf("opening trace file: %w", ferr)
		}
		closer = f.Close
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			_ = f.Close()
			return noop, fmt.Errorf("creating stdout exporter: %w", err)
		}
	case ExporterOTLP:
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
		if opts.Insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, grpcOpts...)
		if err != nil {
			return noop, fmt.Errorf("creating OTLP exporter: %w", err)
		}
	default:
		return noop, fmt.Errorf("unknown trace exporter %q", opts.Exporter)
	}

	attrs := []attribute.KeyValue{attribute.String("service.name", ServiceName)}
	if opts.RunID != "" {
		attrs = append(attrs, attribute.String("vault131.run_id", opts.RunID))
	}
	if opts.Version != "" {
		attrs = append(attrs, attribute.String("service.version", opts.Version))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
	)
	otel.SetTracerProvider(tp)
	log.Info(log.CatTracing, "Tracer initialized", "exporter", opts.Exporter, "endpoint", opts.Endpoint)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			err = errors.Join(err, closer())
		}
		return err
	}, nil
}

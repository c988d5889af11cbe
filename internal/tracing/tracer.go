// Package tracing wires OpenTelemetry into edit sessions: a configurable
// tracer provider, a JSONL file exporter and a middleware that records one
// span per applied edit action.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/textstate/internal/log"
)

// Config configures the tracing subsystem.
type Config struct {
	// Enabled controls whether tracing is active. When false the provider
	// hands out a no-op tracer.
	Enabled bool `yaml:"enabled"`

	// Exporter names the export backend; see Exporters.
	Exporter string `yaml:"exporter"`

	// FilePath is the output file for the "file" exporter.
	FilePath string `yaml:"file_path"`

	// OTLPEndpoint is the collector address for the "otlp" exporter.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// SampleRate is the fraction of action spans kept. Zero means 1.0.
	SampleRate float64 `yaml:"sample_rate"`

	ServiceName string `yaml:"service_name"`

	// Output receives "stdout" exporter output. Nil means os.Stderr so the
	// playground's screen stays intact.
	Output io.Writer `yaml:"-"`
}

const (
	// DefaultServiceName is used when Config.ServiceName is empty.
	DefaultServiceName = "textstate"

	defaultOTLPEndpoint = "localhost:4317"
)

// ErrUnsupportedExporter is returned for unknown Config.Exporter values.
var ErrUnsupportedExporter = errors.New("unsupported exporter type")

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Exporter:     "file",
		OTLPEndpoint: defaultOTLPEndpoint,
		SampleRate:   1.0,
		ServiceName:  DefaultServiceName,
	}
}

type exporterFactory func(cfg Config) (sdktrace.SpanExporter, error)

// exporters maps Config.Exporter values to constructors. A nil exporter
// keeps spans in-process only.
var exporters = map[string]exporterFactory{
	"none": func(Config) (sdktrace.SpanExporter, error) { return nil, nil },
	"file": func(cfg Config) (sdktrace.SpanExporter, error) {
		if cfg.FilePath == "" {
			return nil, errors.New("file_path required for file exporter")
		}
		return NewFileExporter(cfg.FilePath)
	},
	"stdout": func(cfg Config) (sdktrace.SpanExporter, error) {
		w := cfg.Output
		if w == nil {
			w = os.Stderr
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	},
	"otlp": func(cfg Config) (sdktrace.SpanExporter, error) {
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		return otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
	},
}

// Exporters returns the accepted Config.Exporter values, sorted.
func Exporters() []string {
	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	name := cfg.Exporter
	if name == "" {
		name = "none"
	}
	factory, ok := exporters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExporter, cfg.Exporter)
	}
	exp, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", name, err)
	}
	return exp, nil
}

// Provider owns the tracer handed to sessions.
type Provider struct {
	sdk    *sdktrace.TracerProvider
	tracer trace.Tracer
}

// NewProvider builds a provider from cfg. A disabled config yields a
// provider whose tracer records nothing.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(DefaultServiceName)}, nil
	}

	exp, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}

	service := cfg.ServiceName
	if service == "" {
		service = DefaultServiceName
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 1.0
	}

	opts := []sdktrace.TracerProviderOption{
		// Schemaless avoids schema URL conflicts with resource.Default().
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", service))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	sdk := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(sdk)

	log.Info(log.CatTrace, "tracing enabled", "exporter", cfg.Exporter, "sample_rate", rate)
	return &Provider{sdk: sdk, tracer: sdk.Tracer(service)}, nil
}

// Tracer returns the tracer for action spans. It is never nil.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool { return p.sdk != nil }

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}

package shmbuf

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/shmbuf/api"
	"github.com/srediag/shmbuf/pkg/registry"
)

type config struct {
	name     string
	meter    metric.Meter
	tracer   trace.Tracer
	auditor  api.Auditor
	registry *registry.Registry
}

// Option configures a buffer at construction.
type Option func(*config)

func defaultConfig() config {
	return config{registry: registry.Default}
}

// WithName overrides the generated region name. The name must be unique
// within the process; collisions fail allocation.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithMeter attaches an OpenTelemetry meter; per-buffer read/write byte
// counters are recorded against it.
func WithMeter(m metric.Meter) Option {
	return func(c *config) { c.meter = m }
}

// WithTracer attaches an OpenTelemetry tracer; save and load are traced.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) { c.tracer = t }
}

// WithAuditor routes lifecycle events (create, close, save, load) to a.
func WithAuditor(a api.Auditor) Option {
	return func(c *config) { c.auditor = a }
}

// WithRegistry joins the buffer to r instead of registry.Default. A nil
// r keeps the buffer out of any registry.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) { c.registry = r }
}

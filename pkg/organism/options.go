package organism

import (
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/aretw0/cells/pkg/ids"
)

// Option configures an Organism.
type Option func(*Organism)

// WithName sets the organism identity. Without it a name is drawn from the
// ID source.
func WithName(name string) Option {
	return func(o *Organism) {
		o.name = name
	}
}

// WithIDSource sets the generator used when no name is given.
func WithIDSource(src ids.Source) Option {
	return func(o *Organism) {
		o.idSource = src
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Organism) {
		o.logger = logger
	}
}

// WithClock sets the time source used to stamp records.
func WithClock(clock func() time.Time) Option {
	return func(o *Organism) {
		o.clock = clock
	}
}

// WithTracer runs every query inside an OpenTelemetry span.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Organism) {
		o.tracer = tracer
	}
}

func (o *Organism) applyDefaults() {
	if o.idSource == nil {
		o.idSource = ids.Short()
	}
	if o.name == "" {
		o.name = o.idSource()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	o.logger = o.logger.With("organism", o.name)
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.tracer == nil {
		o.tracer = noop.NewTracerProvider().Tracer("")
	}
}

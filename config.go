package meridian

import (
	"bytes"
	_ "embed"
	"io"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	Scope     string          `json:"scope"`
	Provider  string          `json:"provider"`
	Providers ProvidersConfig `json:"providers"`
}

type ProvidersConfig struct {
	InMemory InMemoryConfig `json:"inmemory"`
	Kafka    KafkaConfig    `json:"kafka"`
	Rest     RestConfig     `json:"rest"`
}

type InMemoryConfig struct{}

type KafkaConfig struct {
	Brokers []string `json:"brokers"`
}

type RestConfig struct {
	// Endpoint is the base URL of the hosted service, e.g.
	// `https://api.meridian.dev`.
	Endpoint string `json:"endpoint"`

	// APIKey is sent as a bearer token on every request. Optional against
	// local deployments.
	APIKey string `json:"api_key"`

	// Timeout bounds every request through the underlying HTTP client.
	// Cancellation beyond that is delegated entirely to the caller's
	// context.
	Timeout time.Duration `json:"timeout"`
}

type PubSubOptions struct {
	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator
	MeterProvider  metric.MeterProvider
}

type PubSubOption func(*PubSubOptions)

// WithTracerProvider specifies a tracer provider to use for creating a tracer.
// If none is specified, no tracer is configured
func WithTracerProvider(provider trace.TracerProvider) PubSubOption {
	return func(opts *PubSubOptions) {
		if provider != nil {
			opts.TracerProvider = provider
		}
	}
}

func WithPropagator(propagator propagation.TextMapPropagator) PubSubOption {
	return func(opts *PubSubOptions) {
		if propagator != nil {
			opts.Propagator = propagator
		}
	}
}

func WithMeterProvider(provider metric.MeterProvider) PubSubOption {
	return func(opts *PubSubOptions) {
		if provider != nil {
			opts.MeterProvider = provider
		}
	}
}

//go:embed config.schema.json
var ConfigSchema string

const ConfigSchemaID = "meridian://pubsub-config"

// AddConfigSchema adds the pubsub config schema to the compiler.
// The interface is specified instead of `jsonschema.Compiler` to allow the use of any jsonschema library fork or version.
func AddConfigSchema(c interface {
	AddResource(url string, r io.Reader) error
},
) error {
	return c.AddResource(ConfigSchemaID, bytes.NewBufferString(ConfigSchema))
}

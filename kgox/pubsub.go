package kgox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"

	meridian "github.com/meridianhq/meridian-go"
	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/logrusx"
	"github.com/meridianhq/meridian-go/messagex"
	"github.com/meridianhq/meridian-go/retryx"
)

// PubSub bridges the client contract onto a Kafka cluster. Topics map to
// Kafka topics, subscriptions to consumer groups with auto-commit disabled,
// and acknowledgements to offset commits.
type PubSub struct {
	conf         *meridian.Config
	l            *logrusx.Logger
	kopts        []kgo.Opt
	kotelService *kotel.Kotel
	writeClient  *kgo.Client
	adm          *kadm.Client

	mu        sync.RWMutex
	readers   map[messagex.SubscriptionName]*groupReader
	deadlines map[messagex.SubscriptionName]time.Duration
	closed    bool
}

var (
	_ meridian.PubSub              = (*PubSub)(nil)
	_ meridian.TopicService        = (*PubSub)(nil)
	_ meridian.SubscriptionService = (*PubSub)(nil)
)

// SetupKafkaPubSub connects to the configured brokers. Ack deadlines are not
// enforced per message here: an unacknowledged delivery is redelivered
// because its offset was never committed, following consumer group semantics
// rather than a per-message timer.
func SetupKafkaPubSub(l *logrusx.Logger, c *meridian.Config, opts ...meridian.PubSubOption) (*PubSub, error) {
	if l == nil {
		return nil, errorx.FailedPreconditionErrorf("logger is required")
	}
	if len(c.Providers.Kafka.Brokers) == 0 {
		return nil, errorx.InvalidArgumentErrorf("kafka provider requires at least one broker")
	}

	o := &meridian.PubSubOptions{}
	for _, opt := range opts {
		opt(o)
	}

	kopts := []kgo.Opt{
		kgo.SeedBrokers(c.Providers.Kafka.Brokers...),
	}

	var kotelService *kotel.Kotel
	if o.TracerProvider != nil || o.Propagator != nil || o.MeterProvider != nil {
		kotelService = newKotel(o.TracerProvider, o.Propagator, o.MeterProvider)
		kopts = append(kopts, kgo.WithHooks(kotelService.Hooks()...))
	}

	wc, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, errorx.InternalErrorf("failed to create kafka client: %v", err)
	}

	return &PubSub{
		conf:         c,
		l:            l,
		kopts:        kopts,
		kotelService: kotelService,
		writeClient:  wc,
		adm:          kadm.NewClient(wc),
		readers:      make(map[messagex.SubscriptionName]*groupReader),
		deadlines:    make(map[messagex.SubscriptionName]time.Duration),
	}, nil
}

// Topics implements meridian.PubSub.
func (p *PubSub) Topics() meridian.TopicService {
	return p
}

// Subscriptions implements meridian.PubSub.
func (p *PubSub) Subscriptions() meridian.SubscriptionService {
	return p
}

// HealthCheck pings the cluster, retrying transient failures briefly. Meant
// for readiness probes at startup rather than per-call gating.
func (p *PubSub) HealthCheck(ctx context.Context) error {
	err := retryx.ExponentialRetry(func() error {
		_, err := p.adm.ListBrokers(ctx)
		return err
	})
	if err != nil {
		return errorx.InternalErrorf("failed to connect to pubsub: %v", err)
	}

	return nil
}

// Close implements meridian.PubSub.
func (p *PubSub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	errs := make([]error, 0, len(p.readers))
	for _, r := range p.readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.writeClient.Close()

	return errors.Join(errs...)
}

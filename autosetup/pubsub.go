package autosetup

import (
	meridian "github.com/meridianhq/meridian-go"
	inmemorypubsub "github.com/meridianhq/meridian-go/inmemory"
	"github.com/meridianhq/meridian-go/kgox"
	"github.com/meridianhq/meridian-go/logrusx"
	restpubsub "github.com/meridianhq/meridian-go/rest"
	"github.com/meridianhq/meridian-go/stringsx"
)

// New builds the PubSub named by c.Provider.
func New(l *logrusx.Logger, c *meridian.Config, opts ...meridian.PubSubOption) (meridian.PubSub, error) {
	switch f := stringsx.SwitchExact(c.Provider); {
	case f.AddCase("rest"):
		ps, err := restpubsub.SetupRestPubSub(l, c, opts...)
		if err != nil {
			return nil, err
		}
		l.Infof("Rest pubsub configured! Sending & receiving messages through %s", c.Providers.Rest.Endpoint)
		return ps, nil

	case f.AddCase("kafka"):
		ps, err := kgox.SetupKafkaPubSub(l, c, opts...)
		if err != nil {
			return nil, err
		}
		l.Infof("Kafka pubsub configured! Sending & receiving messages to %s", c.Providers.Kafka.Brokers)
		return ps, nil

	case f.AddCase("inmemory"):
		ps, err := inmemorypubsub.SetupInMemoryPubSub(l, c)
		if err != nil {
			return nil, err
		}
		l.Infof("InMemory pubsub configured! Sending & receiving messages to in-memory")
		return ps, nil

	default:
		return nil, f.ToUnknownCaseErr()
	}
}

package meridian

// PubSub is the entry point to the Meridian client. Implementations are
// provided for the hosted REST API, a Kafka bridge, and an in-memory fake;
// use autosetup.New to pick one from configuration.
type PubSub interface {
	// Topics returns the topic service.
	Topics() TopicService

	// Subscriptions returns the subscription service.
	Subscriptions() SubscriptionService

	// Close closes all underlying connections. The services obtained from
	// this PubSub must not be used afterwards.
	Close() error
}

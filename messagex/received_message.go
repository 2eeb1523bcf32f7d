package messagex

// ReceivedMessage is a delivered instance of a Message. The AckID identifies
// this specific delivery for acknowledgement; redeliveries of the same
// message carry a fresh AckID.
type ReceivedMessage struct {
	*Message

	// AckID is the opaque token to pass to SubscriptionService.Ack. It is
	// only valid until the subscription's ack deadline expires.
	AckID string

	// DeliveryAttempt counts how many times the service has delivered this
	// message, starting at 1.
	DeliveryAttempt int
}

package meridian

import (
	"context"
	"time"

	"github.com/meridianhq/meridian-go/messagex"
)

// DefaultAckDeadline is applied to subscriptions created without an explicit
// deadline.
const DefaultAckDeadline = 10 * time.Second

// Subscription is a named, topic-bound feed from which a consumer pulls
// messages.
type Subscription struct {
	Name  messagex.SubscriptionName
	Topic messagex.Topic

	// AckDeadline is the window after delivery within which a message must
	// be acknowledged before the service makes it deliverable again.
	AckDeadline time.Duration
}

// SubscriptionService manages subscriptions and the pull/acknowledge message
// flow.
type SubscriptionService interface {
	// Subscribe creates a subscription on the topic.
	Subscribe(ctx context.Context, topic messagex.Topic, name messagex.SubscriptionName, opts ...SubscribeOption) (*Subscription, error)

	// ListSubscriptions returns the subscriptions bound to the topic.
	ListSubscriptions(ctx context.Context, topic messagex.Topic) ([]Subscription, error)

	// Pull fetches up to opts.MaxMessages deliverable messages. With
	// ReturnImmediately set it returns whatever is available now, possibly
	// nothing, instead of waiting. Pulling from a subscription that does not
	// exist fails with a NOT_FOUND error (code 404).
	Pull(ctx context.Context, name messagex.SubscriptionName, opts *PullOptions) ([]*messagex.ReceivedMessage, error)

	// Ack marks one or more delivered messages as processed. Acknowledged
	// messages are not redelivered by subsequent pulls. Unknown or expired
	// ack ids are ignored.
	Ack(ctx context.Context, name messagex.SubscriptionName, ackIDs ...string) error

	// DeleteSubscription deletes a subscription. Deleting a subscription
	// that does not exist is not an error.
	DeleteSubscription(ctx context.Context, name messagex.SubscriptionName) error
}

// PullOptions bound a single pull call.
type PullOptions struct {
	// ReturnImmediately makes the pull return without waiting for messages
	// to become available.
	ReturnImmediately bool

	// MaxMessages is the maximum amount of messages returned by the call.
	// Default value is 100 if nothing is specified.
	MaxMessages int
}

func NewDefaultPullOptions() *PullOptions {
	return &PullOptions{
		MaxMessages: 100,
	}
}

type SubscribeOptions struct {
	AckDeadline time.Duration
}

func NewDefaultSubscribeOptions() *SubscribeOptions {
	return &SubscribeOptions{
		AckDeadline: DefaultAckDeadline,
	}
}

type SubscribeOption func(*SubscribeOptions)

// WithAckDeadline sets the acknowledgement deadline of the subscription.
func WithAckDeadline(d time.Duration) SubscribeOption {
	return func(o *SubscribeOptions) {
		if d > 0 {
			o.AckDeadline = d
		}
	}
}

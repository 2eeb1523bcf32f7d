package inmemorypubsub

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	meridian "github.com/meridianhq/meridian-go"
	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/logrusx"
	"github.com/meridianhq/meridian-go/messagex"
)

// pullPollInterval drives both blocking pulls and redelivery of messages
// whose ack deadline expired.
const pullPollInterval = 20 * time.Millisecond

type (
	memoryPubSub struct {
		scope string
		l     *logrusx.Logger

		mu     sync.RWMutex
		topics map[messagex.Topic]struct{}
		subs   map[messagex.SubscriptionName]*memorySubscription
		wake   chan struct{}
		closed bool
	}

	memorySubscription struct {
		topic       messagex.Topic
		ackDeadline time.Duration

		queue       []*queuedMessage
		outstanding map[string]*queuedMessage
	}

	// queuedMessage tracks one message through the
	// Published -> Delivered(ackId) -> Acknowledged lifecycle. An expired
	// delivery moves back to the queue with a fresh ack id on the next pull.
	queuedMessage struct {
		msg      *messagex.Message
		attempts int
		deadline time.Time
	}
)

var (
	_ meridian.PubSub              = (*memoryPubSub)(nil)
	_ meridian.TopicService        = (*memoryPubSub)(nil)
	_ meridian.SubscriptionService = (*memoryPubSub)(nil)
)

// SetupInMemoryPubSub returns a PubSub holding all state in process. It
// implements the full service contract, including ack deadlines and
// redelivery, which makes it the backend of choice for tests.
func SetupInMemoryPubSub(l *logrusx.Logger, c *meridian.Config) (*memoryPubSub, error) {
	if l == nil {
		return nil, errorx.FailedPreconditionErrorf("logger is required")
	}

	return &memoryPubSub{
		scope:  c.Scope,
		l:      l,
		topics: map[messagex.Topic]struct{}{},
		subs:   map[messagex.SubscriptionName]*memorySubscription{},
		wake:   make(chan struct{}, 1),
	}, nil
}

// Topics implements meridian.PubSub.
func (m *memoryPubSub) Topics() meridian.TopicService {
	return m
}

// Subscriptions implements meridian.PubSub.
func (m *memoryPubSub) Subscriptions() meridian.SubscriptionService {
	return m
}

// Close implements meridian.PubSub.
func (m *memoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// CreateTopic implements meridian.TopicService.
func (m *memoryPubSub) CreateTopic(ctx context.Context, topic messagex.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.topics[topic]; ok {
		return errorx.AlreadyExistsErrorf("topic %q already exists", topic.TopicName(m.scope))
	}

	m.topics[topic] = struct{}{}
	return nil
}

// ListTopics implements meridian.TopicService.
func (m *memoryPubSub) ListTopics(ctx context.Context, q *meridian.ListQuery) (*meridian.TopicPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return meridian.PaginateTopics(m.sortedTopics(), q)
}

// DeleteTopic implements meridian.TopicService. Deleting cascades to the
// topic's subscriptions and is idempotent.
func (m *memoryPubSub) DeleteTopic(ctx context.Context, topic messagex.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.topics, topic)
	for name, sub := range m.subs {
		if sub.topic == topic {
			delete(m.subs, name)
		}
	}

	return nil
}

// DeleteTopics implements meridian.TopicService.
func (m *memoryPubSub) DeleteTopics(ctx context.Context, topics ...messagex.Topic) error {
	return meridian.FanOutDelete(ctx, topics, m.DeleteTopic)
}

// Publish implements meridian.TopicService.
func (m *memoryPubSub) Publish(ctx context.Context, topic messagex.Topic, messages ...*messagex.Message) (meridian.Errors, error) {
	errs := make(meridian.Errors, len(messages))

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errs, errorx.FailedPreconditionErrorf("pubsub is closed")
	}

	if _, ok := m.topics[topic]; !ok {
		err := errorx.NotFoundErrorf("topic %q does not exist", topic.TopicName(m.scope))
		for i := range errs {
			errs[i] = err
		}
		return errs, err
	}

	for i, msg := range messages {
		if msg == nil || len(msg.Payload) == 0 {
			errs[i] = errorx.InvalidArgumentErrorf("message payload cannot be empty")
			continue
		}

		for _, sub := range m.subs {
			if sub.topic != topic {
				continue
			}
			sub.queue = append(sub.queue, &queuedMessage{msg: msg.Copy()})
		}
	}

	select {
	case m.wake <- struct{}{}:
	default:
	}

	return errs, errs.FirstNonNil()
}

// Subscribe implements meridian.SubscriptionService.
func (m *memoryPubSub) Subscribe(ctx context.Context, topic messagex.Topic, name messagex.SubscriptionName, opts ...meridian.SubscribeOption) (*meridian.Subscription, error) {
	o := meridian.NewDefaultSubscribeOptions()
	for _, opt := range opts {
		opt(o)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.topics[topic]; !ok {
		return nil, errorx.NotFoundErrorf("topic %q does not exist", topic.TopicName(m.scope))
	}
	if _, ok := m.subs[name]; ok {
		return nil, errorx.AlreadyExistsErrorf("subscription %q already exists", name.QualifiedName(m.scope))
	}

	m.subs[name] = &memorySubscription{
		topic:       topic,
		ackDeadline: o.AckDeadline,
		outstanding: map[string]*queuedMessage{},
	}

	return &meridian.Subscription{
		Name:        name,
		Topic:       topic,
		AckDeadline: o.AckDeadline,
	}, nil
}

// ListSubscriptions implements meridian.SubscriptionService.
func (m *memoryPubSub) ListSubscriptions(ctx context.Context, topic messagex.Topic) ([]meridian.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.topics[topic]; !ok {
		return nil, errorx.NotFoundErrorf("topic %q does not exist", topic.TopicName(m.scope))
	}

	out := make([]meridian.Subscription, 0)
	for name, sub := range m.subs {
		if sub.topic != topic {
			continue
		}
		out = append(out, meridian.Subscription{
			Name:        name,
			Topic:       topic,
			AckDeadline: sub.ackDeadline,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Pull implements meridian.SubscriptionService.
func (m *memoryPubSub) Pull(ctx context.Context, name messagex.SubscriptionName, opts *meridian.PullOptions) ([]*messagex.ReceivedMessage, error) {
	if opts == nil {
		opts = meridian.NewDefaultPullOptions()
	}

	for {
		msgs, err := m.pullAvailable(name, opts.MaxMessages)
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 || opts.ReturnImmediately {
			return msgs, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.wake:
		case <-time.After(pullPollInterval):
		}
	}
}

func (m *memoryPubSub) pullAvailable(name messagex.SubscriptionName, maxMessages int) ([]*messagex.ReceivedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errorx.FailedPreconditionErrorf("pubsub is closed")
	}

	sub, ok := m.subs[name]
	if !ok {
		return nil, errorx.NotFoundErrorf("subscription %q does not exist", name.QualifiedName(m.scope))
	}

	now := time.Now()
	sub.reclaimExpired(now)

	n := len(sub.queue)
	if maxMessages > 0 && n > maxMessages {
		n = maxMessages
	}

	out := make([]*messagex.ReceivedMessage, 0, n)
	for _, qm := range sub.queue[:n] {
		ackID := uuid.NewString()
		qm.attempts++
		qm.deadline = now.Add(sub.ackDeadline)
		sub.outstanding[ackID] = qm

		out = append(out, &messagex.ReceivedMessage{
			Message:         qm.msg,
			AckID:           ackID,
			DeliveryAttempt: qm.attempts,
		})
	}
	sub.queue = sub.queue[n:]

	return out, nil
}

// reclaimExpired moves deliveries whose ack deadline passed back to the
// deliverable queue. The caller must hold the write lock.
func (s *memorySubscription) reclaimExpired(now time.Time) {
	for ackID, qm := range s.outstanding {
		if qm.deadline.After(now) {
			continue
		}
		delete(s.outstanding, ackID)
		s.queue = append(s.queue, qm)
	}
}

// Ack implements meridian.SubscriptionService. Unknown or expired ack ids
// are ignored.
func (m *memoryPubSub) Ack(ctx context.Context, name messagex.SubscriptionName, ackIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subs[name]
	if !ok {
		return errorx.NotFoundErrorf("subscription %q does not exist", name.QualifiedName(m.scope))
	}

	for _, ackID := range ackIDs {
		delete(sub.outstanding, ackID)
	}

	return nil
}

// DeleteSubscription implements meridian.SubscriptionService.
func (m *memoryPubSub) DeleteSubscription(ctx context.Context, name messagex.SubscriptionName) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.subs, name)
	return nil
}

func (m *memoryPubSub) sortedTopics() []messagex.Topic {
	names := lo.Keys(m.topics)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

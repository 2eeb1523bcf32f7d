package meridian

import (
	"context"

	"github.com/meridianhq/meridian-go/messagex"
)

// TopicService manages topics and publishes messages to them.
type TopicService interface {
	// CreateTopic creates a new topic.
	// It fails with an ALREADY_EXISTS error when the name collides with an
	// existing topic.
	CreateTopic(ctx context.Context, topic messagex.Topic) error

	// ListTopics returns up to q.MaxResults topics. When more topics remain,
	// the returned page carries a continuation query with the same bound and
	// an opaque token. A nil query lists everything in one page.
	ListTopics(ctx context.Context, q *ListQuery) (*TopicPage, error)

	// DeleteTopic deletes a topic. Deleting a topic that does not exist is
	// not an error. The service cascades cleanup of the topic's
	// subscriptions.
	DeleteTopic(ctx context.Context, topic messagex.Topic) error

	// DeleteTopics deletes the given topics as a parallel fan-out of
	// independent delete calls with no cross-call dependency.
	DeleteTopics(ctx context.Context, topics ...messagex.Topic) error

	// Publish publishes one or more messages to the topic, in order.
	// It returns one error slot per message plus the first non-nil error.
	// Malformed payloads fail with an INVALID_ARGUMENT error.
	Publish(ctx context.Context, topic messagex.Topic, messages ...*messagex.Message) (Errors, error)
}

// TopicPage is one page of a topic listing.
type TopicPage struct {
	Topics []messagex.Topic

	// Next is nil when this page is the last one.
	Next *ListQuery
}

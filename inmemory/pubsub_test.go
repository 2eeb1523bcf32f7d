package inmemorypubsub

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	meridian "github.com/meridianhq/meridian-go"
	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/logrusx"
	"github.com/meridianhq/meridian-go/messagex"
	"github.com/meridianhq/meridian-go/retryx"
)

func newTestPubSub(t *testing.T) *memoryPubSub {
	t.Helper()
	l := logrusx.New("meridian-go-test", "")
	ps, err := SetupInMemoryPubSub(l, &meridian.Config{
		Scope:    "test-scope",
		Provider: "inmemory",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })

	return ps
}

func randomTopic(t *testing.T) messagex.Topic {
	t.Helper()
	return messagex.Topic(fmt.Sprintf("topic-%s", ksuid.New().String()))
}

func randomSubscription(t *testing.T) messagex.SubscriptionName {
	t.Helper()
	return messagex.SubscriptionName(fmt.Sprintf("sub-%s", ksuid.New().String()))
}

func TestTopicLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("create then list returns the topic", func(t *testing.T) {
		ps := newTestPubSub(t)
		topic := randomTopic(t)
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))

		page, err := ps.Topics().ListTopics(ctx, nil)
		require.NoError(t, err)
		assert.Contains(t, page.Topics, topic)
		assert.Nil(t, page.Next)
	})

	t.Run("create collision fails with already exists", func(t *testing.T) {
		ps := newTestPubSub(t)
		topic := randomTopic(t)
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))

		err := ps.Topics().CreateTopic(ctx, topic)
		assert.True(t, errorx.IsAlreadyExistsError(err))
	})

	t.Run("delete is idempotent and removes the topic from listings", func(t *testing.T) {
		ps := newTestPubSub(t)
		topic := randomTopic(t)
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))
		require.NoError(t, ps.Topics().DeleteTopic(ctx, topic))
		require.NoError(t, ps.Topics().DeleteTopic(ctx, topic))

		page, err := ps.Topics().ListTopics(ctx, nil)
		require.NoError(t, err)
		assert.NotContains(t, page.Topics, topic)
	})

	t.Run("delete cascades to subscriptions", func(t *testing.T) {
		ps := newTestPubSub(t)
		topic := randomTopic(t)
		sub := randomSubscription(t)
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))
		_, err := ps.Subscriptions().Subscribe(ctx, topic, sub)
		require.NoError(t, err)

		require.NoError(t, ps.Topics().DeleteTopic(ctx, topic))

		_, err = ps.Subscriptions().Pull(ctx, sub, &meridian.PullOptions{ReturnImmediately: true})
		assert.True(t, errorx.IsNotFoundError(err))
	})

	t.Run("bulk delete fans out", func(t *testing.T) {
		ps := newTestPubSub(t)
		topics := make([]messagex.Topic, 5)
		for i := range topics {
			topics[i] = randomTopic(t)
			require.NoError(t, ps.Topics().CreateTopic(ctx, topics[i]))
		}

		require.NoError(t, ps.Topics().DeleteTopics(ctx, topics...))

		page, err := ps.Topics().ListTopics(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, page.Topics)
	})
}

func TestListTopicsPagination(t *testing.T) {
	ctx := context.Background()
	ps := newTestPubSub(t)

	const total = 7
	created := make([]messagex.Topic, 0, total)
	for i := 0; i < total; i++ {
		topic := messagex.Topic(fmt.Sprintf("page-%02d", i))
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))
		created = append(created, topic)
	}

	t.Run("bounded request returns exactly the bound and a token", func(t *testing.T) {
		page, err := ps.Topics().ListTopics(ctx, &meridian.ListQuery{MaxResults: 3})
		require.NoError(t, err)
		assert.Len(t, page.Topics, 3)
		require.NotNil(t, page.Next)
		assert.Equal(t, 3, page.Next.MaxResults)
		assert.NotEmpty(t, page.Next.PageToken)
	})

	t.Run("walking the continuation queries visits every topic once", func(t *testing.T) {
		var seen []messagex.Topic
		q := &meridian.ListQuery{MaxResults: 3}
		for q != nil {
			page, err := ps.Topics().ListTopics(ctx, q)
			require.NoError(t, err)
			seen = append(seen, page.Topics...)
			q = page.Next
		}

		assert.Equal(t, created, seen)
	})

	t.Run("malformed token fails with invalid argument", func(t *testing.T) {
		_, err := ps.Topics().ListTopics(ctx, &meridian.ListQuery{PageToken: "%%%not-base64%%%"})
		assert.True(t, errorx.IsInvalidArgumentError(err))
	})
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("publish to a missing topic fails with not found", func(t *testing.T) {
		ps := newTestPubSub(t)
		_, err := ps.Topics().Publish(ctx, randomTopic(t), messagex.NewMessage([]byte("m")))
		assert.True(t, errorx.IsNotFoundError(err))
	})

	t.Run("malformed payloads fail with invalid argument per slot", func(t *testing.T) {
		ps := newTestPubSub(t)
		topic := randomTopic(t)
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))

		errs, err := ps.Topics().Publish(ctx, topic,
			messagex.NewMessage([]byte("ok")),
			messagex.NewMessage(nil),
		)
		require.Error(t, err)
		assert.NoError(t, errs[0])
		assert.True(t, errorx.IsInvalidArgumentError(errs[1]))
	})
}

func TestPullAck(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, opts ...meridian.SubscribeOption) (*memoryPubSub, messagex.Topic, messagex.SubscriptionName) {
		t.Helper()
		ps := newTestPubSub(t)
		topic := randomTopic(t)
		sub := randomSubscription(t)
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))
		_, err := ps.Subscriptions().Subscribe(ctx, topic, sub, opts...)
		require.NoError(t, err)
		return ps, topic, sub
	}

	t.Run("pull returns min of max results and available", func(t *testing.T) {
		ps, topic, sub := setup(t)

		msgs := make([]*messagex.Message, 5)
		for i := range msgs {
			msgs[i] = messagex.NewMessage([]byte(fmt.Sprintf("message-%d", i)))
		}
		errs, err := ps.Topics().Publish(ctx, topic, msgs...)
		require.NoError(t, err)
		require.NoError(t, errs.FirstNonNil())

		received, err := ps.Subscriptions().Pull(ctx, sub, &meridian.PullOptions{ReturnImmediately: true, MaxMessages: 3})
		require.NoError(t, err)
		assert.Len(t, received, 3)

		received, err = ps.Subscriptions().Pull(ctx, sub, &meridian.PullOptions{ReturnImmediately: true, MaxMessages: 10})
		require.NoError(t, err)
		assert.Len(t, received, 2)
	})

	t.Run("pull from a nonexistent subscription fails with code 404", func(t *testing.T) {
		ps := newTestPubSub(t)

		_, err := ps.Subscriptions().Pull(ctx, randomSubscription(t), &meridian.PullOptions{ReturnImmediately: true})
		mErr, ok := errorx.IsMeridianError(err)
		require.True(t, ok)
		assert.Equal(t, 404, mErr.StatusCode())
	})

	t.Run("acknowledged messages are not redelivered", func(t *testing.T) {
		ps, topic, sub := setup(t)

		errs, err := ps.Topics().Publish(ctx, topic, messagex.NewMessage([]byte("once")))
		require.NoError(t, err)
		require.NoError(t, errs.FirstNonNil())

		received, err := ps.Subscriptions().Pull(ctx, sub, &meridian.PullOptions{ReturnImmediately: true})
		require.NoError(t, err)
		require.Len(t, received, 1)

		require.NoError(t, ps.Subscriptions().Ack(ctx, sub, received[0].AckID))

		received, err = ps.Subscriptions().Pull(ctx, sub, &meridian.PullOptions{ReturnImmediately: true})
		require.NoError(t, err)
		assert.Empty(t, received)
	})

	t.Run("unacknowledged messages are redelivered after the deadline", func(t *testing.T) {
		ps, topic, sub := setup(t, meridian.WithAckDeadline(30*time.Millisecond))

		errs, err := ps.Topics().Publish(ctx, topic, messagex.NewMessage([]byte("again"), messagex.WithID("redelivered-id")))
		require.NoError(t, err)
		require.NoError(t, errs.FirstNonNil())

		received, err := ps.Subscriptions().Pull(ctx, sub, &meridian.PullOptions{ReturnImmediately: true})
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, 1, received[0].DeliveryAttempt)
		firstAckID := received[0].AckID

		// Do not ack; the delivery must come back once the deadline expires.
		err = retryx.ConstantRetry(func() error {
			redelivered, err := ps.Subscriptions().Pull(ctx, sub, &meridian.PullOptions{ReturnImmediately: true})
			if err != nil {
				return err
			}
			if len(redelivered) == 0 {
				return fmt.Errorf("no redelivery yet")
			}
			assert.Equal(t, "redelivered-id", redelivered[0].ID)
			assert.Equal(t, 2, redelivered[0].DeliveryAttempt)
			assert.NotEqual(t, firstAckID, redelivered[0].AckID)
			return nil
		}, retryx.WithInitialDuration(20*time.Millisecond), retryx.WithRetryCount(20))
		require.NoError(t, err)
	})

	t.Run("blocking pull wakes up on publish", func(t *testing.T) {
		ps, topic, sub := setup(t)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_, _ = ps.Topics().Publish(context.Background(), topic, messagex.NewMessage([]byte("wake")))
		}()

		pullCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		received, err := ps.Subscriptions().Pull(pullCtx, sub, &meridian.PullOptions{MaxMessages: 1})
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, []byte("wake"), received[0].Payload)
	})

	t.Run("blocking pull honors context cancellation", func(t *testing.T) {
		ps, _, sub := setup(t)

		pullCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := ps.Subscriptions().Pull(pullCtx, sub, nil)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("acking a batch of ids", func(t *testing.T) {
		ps, topic, sub := setup(t)

		msgs := []*messagex.Message{
			messagex.NewMessage([]byte("a")),
			messagex.NewMessage([]byte("b")),
			messagex.NewMessage([]byte("c")),
		}
		errs, err := ps.Topics().Publish(ctx, topic, msgs...)
		require.NoError(t, err)
		require.NoError(t, errs.FirstNonNil())

		received, err := ps.Subscriptions().Pull(ctx, sub, &meridian.PullOptions{ReturnImmediately: true})
		require.NoError(t, err)
		require.Len(t, received, 3)

		ackIDs := make([]string, len(received))
		for i, rm := range received {
			ackIDs[i] = rm.AckID
		}
		require.NoError(t, ps.Subscriptions().Ack(ctx, sub, ackIDs...))

		received, err = ps.Subscriptions().Pull(ctx, sub, &meridian.PullOptions{ReturnImmediately: true})
		require.NoError(t, err)
		assert.Empty(t, received)
	})
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()

	t.Run("subscribe to a missing topic fails with not found", func(t *testing.T) {
		ps := newTestPubSub(t)
		_, err := ps.Subscriptions().Subscribe(ctx, randomTopic(t), randomSubscription(t))
		assert.True(t, errorx.IsNotFoundError(err))
	})

	t.Run("subscribe applies the default ack deadline", func(t *testing.T) {
		ps := newTestPubSub(t)
		topic := randomTopic(t)
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))

		sub, err := ps.Subscriptions().Subscribe(ctx, topic, randomSubscription(t))
		require.NoError(t, err)
		assert.Equal(t, meridian.DefaultAckDeadline, sub.AckDeadline)
	})

	t.Run("list returns the topic's subscriptions sorted by name", func(t *testing.T) {
		ps := newTestPubSub(t)
		topic := randomTopic(t)
		other := randomTopic(t)
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))
		require.NoError(t, ps.Topics().CreateTopic(ctx, other))

		_, err := ps.Subscriptions().Subscribe(ctx, topic, "sub-b")
		require.NoError(t, err)
		_, err = ps.Subscriptions().Subscribe(ctx, topic, "sub-a")
		require.NoError(t, err)
		_, err = ps.Subscriptions().Subscribe(ctx, other, "sub-c")
		require.NoError(t, err)

		subs, err := ps.Subscriptions().ListSubscriptions(ctx, topic)
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.Equal(t, messagex.SubscriptionName("sub-a"), subs[0].Name)
		assert.Equal(t, messagex.SubscriptionName("sub-b"), subs[1].Name)
	})

	t.Run("delete subscription is idempotent", func(t *testing.T) {
		ps := newTestPubSub(t)
		topic := randomTopic(t)
		sub := randomSubscription(t)
		require.NoError(t, ps.Topics().CreateTopic(ctx, topic))
		_, err := ps.Subscriptions().Subscribe(ctx, topic, sub)
		require.NoError(t, err)

		require.NoError(t, ps.Subscriptions().DeleteSubscription(ctx, sub))
		require.NoError(t, ps.Subscriptions().DeleteSubscription(ctx, sub))
	})
}

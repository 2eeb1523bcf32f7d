package kgox

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	meridian "github.com/meridianhq/meridian-go"
	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/messagex"
)

// pullImmediateWait bounds a ReturnImmediately poll. Long enough for a fetch
// round trip to the cluster, short enough to feel immediate to the caller.
const pullImmediateWait = 250 * time.Millisecond

// groupReader is the consumer group member backing one subscription. Auto
// commit stays off: offsets only move through Ack.
type groupReader struct {
	cl    *kgo.Client
	topic messagex.Topic
}

func (r *groupReader) Close() error {
	r.cl.Close()
	return nil
}

// Subscribe implements meridian.SubscriptionService. Creating a subscription
// commits the topic's current end offsets under the group, which both makes
// the binding durable and scopes delivery to messages published afterwards.
func (p *PubSub) Subscribe(ctx context.Context, topic messagex.Topic, name messagex.SubscriptionName, opts ...meridian.SubscribeOption) (*meridian.Subscription, error) {
	o := meridian.NewDefaultSubscribeOptions()
	for _, opt := range opts {
		opt(o)
	}

	scoped := topic.TopicName(p.conf.Scope)
	exists, err := p.topicExists(ctx, scoped)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errorx.NotFoundErrorf("topic %q does not exist", scoped)
	}

	group := name.QualifiedName(p.conf.Scope)
	bound, err := p.groupOffsets(ctx, group)
	if err != nil {
		return nil, err
	}
	if len(bound) > 0 {
		return nil, errorx.AlreadyExistsErrorf("subscription %q already exists", group)
	}

	listed, err := p.adm.ListEndOffsets(ctx, scoped)
	if err != nil {
		return nil, errorx.InternalErrorf("failed to list end offsets for %q: %v", scoped, err)
	}
	resps, err := p.adm.CommitOffsets(ctx, group, listed.Offsets())
	if err != nil {
		return nil, errorx.InternalErrorf("failed to bind subscription %q: %v", group, err)
	}
	if err := resps.Error(); err != nil {
		return nil, errorx.InternalErrorf("failed to bind subscription %q: %v", group, err)
	}

	p.mu.Lock()
	p.deadlines[name] = o.AckDeadline
	p.mu.Unlock()

	return &meridian.Subscription{
		Name:        name,
		Topic:       topic,
		AckDeadline: o.AckDeadline,
	}, nil
}

// ListSubscriptions implements meridian.SubscriptionService.
func (p *PubSub) ListSubscriptions(ctx context.Context, topic messagex.Topic) ([]meridian.Subscription, error) {
	scoped := topic.TopicName(p.conf.Scope)
	exists, err := p.topicExists(ctx, scoped)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errorx.NotFoundErrorf("topic %q does not exist", scoped)
	}

	groups, err := p.groupsForTopic(ctx, scoped)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	subs := make([]meridian.Subscription, 0, len(groups))
	for _, group := range groups {
		name := bareSubscriptionName(group)
		deadline, ok := p.deadlines[name]
		if !ok {
			deadline = meridian.DefaultAckDeadline
		}
		subs = append(subs, meridian.Subscription{
			Name:        name,
			Topic:       topic,
			AckDeadline: deadline,
		})
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })

	return subs, nil
}

// Pull implements meridian.SubscriptionService. Redelivery of
// unacknowledged messages follows group semantics: an uncommitted offset is
// fetched again after the member restarts or the group rebalances, so the
// DeliveryAttempt reported here is always 1.
func (p *PubSub) Pull(ctx context.Context, name messagex.SubscriptionName, opts *meridian.PullOptions) ([]*messagex.ReceivedMessage, error) {
	if opts == nil {
		opts = meridian.NewDefaultPullOptions()
	}

	reader, err := p.reader(ctx, name)
	if err != nil {
		return nil, err
	}

	pollCtx := ctx
	if opts.ReturnImmediately {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, pullImmediateWait)
		defer cancel()
	}

	fetches := reader.cl.PollRecords(pollCtx, opts.MaxMessages)
	for _, fetchErr := range fetches.Errors() {
		if errors.Is(fetchErr.Err, context.DeadlineExceeded) && opts.ReturnImmediately {
			continue
		}
		if errors.Is(fetchErr.Err, context.Canceled) || errors.Is(fetchErr.Err, context.DeadlineExceeded) {
			return nil, ctx.Err()
		}
		return nil, errorx.InternalErrorf("failed to fetch records: %v", fetchErr.Err)
	}

	records := fetches.Records()
	msgs := make([]*messagex.ReceivedMessage, 0, len(records))
	for _, record := range records {
		msg, err := defaultMarshaler.Unmarshal(record)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, &messagex.ReceivedMessage{
			Message:         msg,
			AckID:           encodeAckID(record.Topic, record.Partition, record.Offset),
			DeliveryAttempt: 1,
		})
	}

	return msgs, nil
}

// Ack implements meridian.SubscriptionService. Each ack id commits the
// offset right after its record; acking out of order therefore implicitly
// acks everything before it on the same partition.
func (p *PubSub) Ack(ctx context.Context, name messagex.SubscriptionName, ackIDs ...string) error {
	if len(ackIDs) == 0 {
		return nil
	}

	uncommitted := make(map[string]map[int32]kgo.EpochOffset, 1)
	for _, ackID := range ackIDs {
		topic, partition, offset, err := decodeAckID(ackID)
		if err != nil {
			return err
		}
		if _, ok := uncommitted[topic]; !ok {
			uncommitted[topic] = make(map[int32]kgo.EpochOffset)
		}
		if current, ok := uncommitted[topic][partition]; !ok || offset+1 > current.Offset {
			uncommitted[topic][partition] = kgo.EpochOffset{Epoch: -1, Offset: offset + 1}
		}
	}

	p.mu.RLock()
	reader, hasReader := p.readers[name]
	p.mu.RUnlock()

	// An active member must commit through its own client; outside of a pull
	// session the admin path works on the idle group.
	if hasReader {
		return commitThroughReader(ctx, reader, uncommitted)
	}

	group := name.QualifiedName(p.conf.Scope)
	bound, err := p.groupOffsets(ctx, group)
	if err != nil {
		return err
	}
	if len(bound) == 0 {
		return errorx.NotFoundErrorf("subscription %q does not exist", group)
	}

	offs := make(kadm.Offsets)
	for topic, partitions := range uncommitted {
		for partition, eo := range partitions {
			offs.Add(kadm.Offset{Topic: topic, Partition: partition, At: eo.Offset, LeaderEpoch: -1})
		}
	}
	resps, err := p.adm.CommitOffsets(ctx, group, offs)
	if err != nil {
		return errorx.InternalErrorf("failed to commit offsets for %q: %v", group, err)
	}
	if err := resps.Error(); err != nil {
		return errorx.InternalErrorf("failed to commit offsets for %q: %v", group, err)
	}

	return nil
}

// DeleteSubscription implements meridian.SubscriptionService.
func (p *PubSub) DeleteSubscription(ctx context.Context, name messagex.SubscriptionName) error {
	p.mu.Lock()
	if reader, ok := p.readers[name]; ok {
		_ = reader.Close()
		delete(p.readers, name)
	}
	delete(p.deadlines, name)
	p.mu.Unlock()

	return p.deleteGroup(ctx, name.QualifiedName(p.conf.Scope))
}

// reader returns the consumer group member for the subscription, creating it
// on first pull. The topic binding is recovered from the group's committed
// offsets, so pulls work across process restarts.
func (p *PubSub) reader(ctx context.Context, name messagex.SubscriptionName) (*groupReader, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, errorx.FailedPreconditionErrorf("pubsub is closed")
	}
	if r, ok := p.readers[name]; ok {
		p.mu.RUnlock()
		return r, nil
	}
	p.mu.RUnlock()

	group := name.QualifiedName(p.conf.Scope)
	bound, err := p.groupOffsets(ctx, group)
	if err != nil {
		return nil, err
	}
	if len(bound) == 0 {
		return nil, errorx.NotFoundErrorf("subscription %q does not exist", group)
	}
	scopedTopic := bound[0]

	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.readers[name]; ok {
		return r, nil
	}

	kopts := append([]kgo.Opt{}, p.kopts...)
	kopts = append(kopts,
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(scopedTopic),
		kgo.DisableAutoCommit(),
	)
	cl, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, errorx.InternalErrorf("failed to create consumer for %q: %v", group, err)
	}

	r := &groupReader{cl: cl, topic: messagex.TopicFromName(scopedTopic)}
	p.readers[name] = r
	return r, nil
}

func commitThroughReader(ctx context.Context, reader *groupReader, uncommitted map[string]map[int32]kgo.EpochOffset) error {
	var commitErr error
	reader.cl.CommitOffsetsSync(ctx, uncommitted, func(_ *kgo.Client, _ *kmsg.OffsetCommitRequest, resp *kmsg.OffsetCommitResponse, err error) {
		if err != nil {
			commitErr = err
			return
		}
		for _, t := range resp.Topics {
			for _, partition := range t.Partitions {
				if err := kerr.ErrorForCode(partition.ErrorCode); err != nil {
					commitErr = err
					return
				}
			}
		}
	})
	if commitErr != nil {
		return errorx.InternalErrorf("failed to commit offsets: %v", commitErr)
	}

	return nil
}

// groupOffsets returns the topics the group has committed offsets on. An
// empty result means the subscription does not exist.
func (p *PubSub) groupOffsets(ctx context.Context, group string) ([]string, error) {
	resps, err := p.adm.FetchOffsets(ctx, group)
	if err != nil {
		if errors.Is(err, kerr.GroupIDNotFound) {
			return nil, nil
		}
		return nil, errorx.InternalErrorf("failed to fetch offsets for %q: %v", group, err)
	}

	topics := make([]string, 0, len(resps))
	for topic := range resps {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	return topics, nil
}

// groupsForTopic returns the in-scope groups holding committed offsets on
// the topic.
func (p *PubSub) groupsForTopic(ctx context.Context, scopedTopic string) ([]string, error) {
	listed, err := p.adm.ListGroups(ctx)
	if err != nil {
		return nil, errorx.InternalErrorf("failed to list groups: %v", err)
	}

	prefix := ""
	if p.conf.Scope != "" {
		prefix = p.conf.Scope + messagex.SubscriptionNameSeparator
	}

	groups := lo.Filter(listed.Groups(), func(group string, _ int) bool {
		return strings.HasPrefix(group, prefix)
	})

	bound := make([]string, 0, len(groups))
	for _, group := range groups {
		topics, err := p.groupOffsets(ctx, group)
		if err != nil {
			return nil, err
		}
		if lo.Contains(topics, scopedTopic) {
			bound = append(bound, group)
		}
	}

	return bound, nil
}

func (p *PubSub) deleteGroup(ctx context.Context, group string) error {
	resp, err := p.adm.DeleteGroup(ctx, group)
	if err != nil {
		return errorx.InternalErrorf("failed to delete group %q: %v", group, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.GroupIDNotFound) {
		return errorx.InternalErrorf("failed to delete group %q: %v", group, resp.Err)
	}

	return nil
}

func bareSubscriptionName(group string) messagex.SubscriptionName {
	if _, bare, err := messagex.ExtractScopeFromSubscriptionName(group); err == nil {
		return bare
	}
	return messagex.SubscriptionName(group)
}

package kgox

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	meridian "github.com/meridianhq/meridian-go"
	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/messagex"
)

const (
	// Topic creation delegates sizing to the cluster. A single partition
	// keeps per-subscription ordering aligned with publish order.
	createTopicPartitions        = 1
	createTopicReplicationFactor = -1
)

// CreateTopic implements meridian.TopicService.
func (p *PubSub) CreateTopic(ctx context.Context, topic messagex.Topic) error {
	scoped := topic.TopicName(p.conf.Scope)
	resp, err := p.adm.CreateTopic(ctx, createTopicPartitions, createTopicReplicationFactor, nil, scoped)
	if err != nil {
		return errorx.InternalErrorf("failed to create topic %q: %v", scoped, err)
	}
	if resp.Err != nil {
		if errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return errorx.AlreadyExistsErrorf("topic %q already exists", scoped)
		}
		return errorx.InternalErrorf("failed to create topic %q: %v", scoped, resp.Err)
	}

	return nil
}

// ListTopics implements meridian.TopicService. The cluster metadata comes
// back unpaginated, so pages are cut client side over the sorted names.
func (p *PubSub) ListTopics(ctx context.Context, q *meridian.ListQuery) (*meridian.TopicPage, error) {
	names, err := p.scopedTopicNames(ctx)
	if err != nil {
		return nil, err
	}

	topics := lo.Map(names, func(name string, _ int) messagex.Topic {
		return messagex.TopicFromName(name)
	})
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })

	return meridian.PaginateTopics(topics, q)
}

// DeleteTopic implements meridian.TopicService. Groups bound to the topic
// are deleted first so the cascade matches the service behavior.
func (p *PubSub) DeleteTopic(ctx context.Context, topic messagex.Topic) error {
	scoped := topic.TopicName(p.conf.Scope)

	groups, err := p.groupsForTopic(ctx, scoped)
	if err != nil {
		return err
	}
	for _, group := range groups {
		if err := p.deleteGroup(ctx, group); err != nil {
			return err
		}
	}

	resps, err := p.adm.DeleteTopics(ctx, scoped)
	if err != nil {
		return errorx.InternalErrorf("failed to delete topic %q: %v", scoped, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.UnknownTopicOrPartition) {
			return errorx.InternalErrorf("failed to delete topic %q: %v", scoped, resp.Err)
		}
	}

	return nil
}

// DeleteTopics implements meridian.TopicService.
func (p *PubSub) DeleteTopics(ctx context.Context, topics ...messagex.Topic) error {
	return meridian.FanOutDelete(ctx, topics, p.DeleteTopic)
}

// Publish implements meridian.TopicService.
func (p *PubSub) Publish(ctx context.Context, topic messagex.Topic, messages ...*messagex.Message) (meridian.Errors, error) {
	scoped := topic.TopicName(p.conf.Scope)
	errs := make(meridian.Errors, len(messages))

	records := make([]*kgo.Record, 0, len(messages))
	sent := make([]int, 0, len(messages))
	for i, msg := range messages {
		record, err := defaultMarshaler.Marshal(ctx, msg, scoped)
		if err != nil {
			errs[i] = err
			continue
		}
		records = append(records, record)
		sent = append(sent, i)
	}

	if len(records) > 0 {
		results := p.writeClient.ProduceSync(ctx, records...)
		for i, result := range results {
			if result.Err == nil {
				continue
			}
			if errors.Is(result.Err, kerr.UnknownTopicOrPartition) {
				errs[sent[i]] = errorx.NotFoundErrorf("topic %q does not exist", scoped)
				continue
			}
			errs[sent[i]] = errorx.InternalErrorf("failed to produce message: %v", result.Err)
		}
	}

	return errs, errs.FirstNonNil()
}

// scopedTopicNames returns the fully qualified names of the topics in this
// scope, skipping the cluster's internal ones.
func (p *PubSub) scopedTopicNames(ctx context.Context) ([]string, error) {
	details, err := p.adm.ListTopics(ctx)
	if err != nil {
		return nil, errorx.InternalErrorf("failed to list topics: %v", err)
	}

	prefix := ""
	if p.conf.Scope != "" {
		prefix = p.conf.Scope + messagex.TopicSeparator
	}

	return lo.Filter(details.TopicsList().Topics(), func(name string, _ int) bool {
		if strings.HasPrefix(name, "__") {
			return false
		}
		return strings.HasPrefix(name, prefix)
	}), nil
}

func (p *PubSub) topicExists(ctx context.Context, scoped string) (bool, error) {
	details, err := p.adm.ListTopics(ctx, scoped)
	if err != nil {
		return false, errorx.InternalErrorf("failed to list topics: %v", err)
	}
	return details.Has(scoped), nil
}

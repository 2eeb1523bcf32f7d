package messagex

import (
	"strings"

	"github.com/meridianhq/meridian-go/errorx"
)

type Topic string

const TopicSeparator = "."

func NewTopic(topic string) (Topic, error) {
	if topic == "" {
		return "", errorx.InvalidArgumentErrorf("topic name cannot be empty")
	}
	if strings.Contains(topic, TopicSeparator) {
		return "", errorx.InvalidArgumentErrorf("topic name cannot contain '%s'", TopicSeparator)
	}

	return Topic(topic), nil
}

// TopicName returns the topic name with the given scope.
// If the scope is empty, it returns the topic name as is.
// This should be used when interacting with the concrete backends.
func (t Topic) TopicName(scope string) string {
	if scope != "" {
		return scope + TopicSeparator + string(t)
	}

	return string(t)
}

// TopicFromName strips the scope from a fully qualified topic name.
func TopicFromName(topicName string) Topic {
	splits := strings.Split(topicName, TopicSeparator)
	if len(splits) > 1 {
		return Topic(strings.Join(splits[1:], TopicSeparator))
	}

	return Topic(splits[0])
}

package kgox

import (
	"context"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/messagex"
)

type Marshaler interface {
	// Marshal marshals a message into a Kafka record.
	Marshal(ctx context.Context, m *messagex.Message, topic string) (*kgo.Record, error)
}

type Unmarshaler interface {
	// Unmarshal unmarshals a Kafka record into a message.
	Unmarshal(r *kgo.Record) (*messagex.Message, error)
}

// DefaultMarshaler maps message metadata onto record headers. The message id
// and publish time travel in reserved headers so they survive the round trip.
type DefaultMarshaler struct{}

var (
	_                Marshaler   = (*DefaultMarshaler)(nil)
	_                Unmarshaler = (*DefaultMarshaler)(nil)
	defaultMarshaler             = &DefaultMarshaler{}
)

func (m *DefaultMarshaler) Marshal(ctx context.Context, msg *messagex.Message, topic string) (*kgo.Record, error) {
	if msg == nil || len(msg.Payload) == 0 {
		return nil, errorx.InvalidArgumentErrorf("message payload cannot be empty")
	}

	headers := make([]kgo.RecordHeader, 0, len(msg.Metadata)+2)
	for k, v := range msg.Metadata {
		if k == messagex.IDHeaderKey || k == messagex.PublishTimeHeaderKey {
			continue
		}
		headers = append(headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	headers = append(headers,
		kgo.RecordHeader{Key: messagex.IDHeaderKey, Value: []byte(msg.ID)},
		kgo.RecordHeader{Key: messagex.PublishTimeHeaderKey, Value: []byte(strconv.FormatInt(time.Now().UnixMilli(), 10))},
	)

	// The trace context stored in the metadata, if any, becomes the record's
	// context so the producer hooks link spans correctly.
	ctx = msg.ExtractTraceContext(ctx)

	return &kgo.Record{
		Context: ctx,
		Topic:   topic,
		Headers: headers,
		Value:   msg.Payload,
	}, nil
}

// Unmarshal implements Unmarshaler.
func (m *DefaultMarshaler) Unmarshal(r *kgo.Record) (*messagex.Message, error) {
	msg := &messagex.Message{
		Metadata: make(messagex.MessageMetadata, len(r.Headers)),
		Payload:  r.Value,
	}

	for _, header := range r.Headers {
		if header.Key == messagex.IDHeaderKey {
			msg.ID = string(header.Value)
			continue
		}

		msg.Metadata[header.Key] = string(header.Value)
	}

	return msg, nil
}

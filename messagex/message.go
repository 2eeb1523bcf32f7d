package messagex

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	IDHeaderKey          = "_meridian_message_id"
	PublishTimeHeaderKey = "_meridian_publish_time"
)

// Message is the unit of data published to a topic. The payload is opaque to
// the client and the service.
type Message struct {
	ID       string
	Metadata MessageMetadata
	Payload  []byte
}

type MessageMetadata map[string]string

// NewMessage creates a new Message with the given payload and options.
// A ksuid is generated for the message if no ID is provided.
func NewMessage(payload []byte, opts ...newMessageOption) *Message {
	o := newMessageOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.id == "" {
		o.id = ksuid.New().String()
	}

	if o.m == nil {
		o.m = make(MessageMetadata)
	}

	return &Message{
		ID:       o.id,
		Metadata: o.m,
		Payload:  payload,
	}
}

type newMessageOptions struct {
	id string
	m  MessageMetadata
}

type newMessageOption func(*newMessageOptions)

// WithID sets the ID of the message.
func WithID(id string) newMessageOption {
	return func(o *newMessageOptions) {
		o.id = id
	}
}

// WithMetadata sets the metadata of the message.
func WithMetadata(m MessageMetadata) newMessageOption {
	return func(o *newMessageOptions) {
		o.m = m
	}
}

func (m *Message) WithSpan(ctx context.Context, tracer trace.Tracer, spanPrefix string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	msgctx, span := tracer.Start(ctx, fmt.Sprintf("%s.message", spanPrefix), opts...)

	// Inject TraceContext to the message metadata
	prop := NewTraceContextPropagator()
	prop.Inject(msgctx, m)

	return msgctx, span
}

func (m *Message) Copy() *Message {
	newMessage := Message{
		ID:       m.ID,
		Metadata: MessageMetadata{},
		Payload:  make([]byte, len(m.Payload)),
	}

	copy(newMessage.Payload, m.Payload)

	for key, value := range m.Metadata {
		newMessage.Metadata[key] = value
	}

	return &newMessage
}

func (m *Message) ExtractTraceContext(ctx context.Context) context.Context {
	prop := NewTraceContextPropagator()
	return prop.Extract(ctx, m.Metadata)
}

func (m *Message) InjectTraceContext(ctx context.Context) {
	prop := NewTraceContextPropagator()
	prop.Inject(ctx, m)
}

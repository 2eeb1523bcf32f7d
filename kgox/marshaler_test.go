package kgox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/messagex"
)

func TestMarshal(t *testing.T) {
	t.Run("maps metadata onto headers with the id reserved", func(t *testing.T) {
		msg := messagex.NewMessage([]byte("PAYLOAD"),
			messagex.WithID("message-id"),
			messagex.WithMetadata(messagex.MessageMetadata{
				"random_header":      "random",
				messagex.IDHeaderKey: "spoofed-id",
			}),
		)

		record, err := defaultMarshaler.Marshal(context.Background(), msg, "acme.orders")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "acme.orders", record.Topic)
		assert.Equal(t, msg.Payload, record.Value)

		headers := map[string]string{}
		for _, h := range record.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "message-id", headers[messagex.IDHeaderKey])
		assert.Equal(t, "random", headers["random_header"])
		assert.NotEmpty(t, headers[messagex.PublishTimeHeaderKey])
	})

	t.Run("rejects an empty payload", func(t *testing.T) {
		_, err := defaultMarshaler.Marshal(context.Background(), messagex.NewMessage(nil), "acme.orders")
		assert.True(t, errorx.IsInvalidArgumentError(err))

		_, err = defaultMarshaler.Marshal(context.Background(), nil, "acme.orders")
		assert.True(t, errorx.IsInvalidArgumentError(err))
	})

	t.Run("unmarshal restores id, metadata and payload", func(t *testing.T) {
		msg := messagex.NewMessage([]byte("PAYLOAD"), messagex.WithMetadata(messagex.MessageMetadata{"k": "v"}))

		record, err := defaultMarshaler.Marshal(context.Background(), msg, "acme.orders")
		require.NoError(t, err)

		got, err := defaultMarshaler.Unmarshal(record)
		require.NoError(t, err)
		assert.Equal(t, msg.ID, got.ID)
		assert.Equal(t, msg.Payload, got.Payload)
		assert.Equal(t, "v", got.Metadata["k"])
	})
}

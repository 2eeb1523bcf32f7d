package messagex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMessage(t *testing.T) {
	t.Run("should generate an id when none is provided", func(t *testing.T) {
		m := NewMessage([]byte("payload"))
		assert.NotEmpty(t, m.ID)
		assert.NotNil(t, m.Metadata)
	})

	t.Run("should keep the provided id and metadata", func(t *testing.T) {
		m := NewMessage([]byte("payload"), WithID("myId"), WithMetadata(MessageMetadata{"k": "v"}))
		assert.Equal(t, "myId", m.ID)
		assert.Equal(t, "v", m.Metadata["k"])
	})
}

func TestCopy(t *testing.T) {
	t.Run("should deep copy message", func(t *testing.T) {
		originalMessage := &Message{
			ID: "myId",
			Metadata: MessageMetadata{
				"test1": "value1",
				"test2": "value2",
			},
			Payload: []byte("TestPayload"),
		}

		copyMessage := originalMessage.Copy()
		assert.Equal(t, originalMessage, copyMessage)
		assert.False(t, originalMessage == copyMessage)

		copyMessage.ID = "newId"
		copyMessage.Metadata["test1"] = "test2"
		copyMessage.Payload[2] = byte(5)

		assert.NotEqual(t, originalMessage, copyMessage)
		assert.NotEqual(t, originalMessage.ID, copyMessage.ID)
		assert.NotEqual(t, originalMessage.Metadata, copyMessage.Metadata)
		assert.NotEqual(t, originalMessage.Payload, copyMessage.Payload)
	})
}

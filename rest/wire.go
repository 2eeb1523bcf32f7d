package restpubsub

import (
	"github.com/meridianhq/meridian-go/messagex"
)

// The wire types mirror the service API surface. Payloads travel as base64
// `data` strings, which encoding/json already produces for []byte.

type wireMessage struct {
	MessageID  string                   `json:"messageId,omitempty"`
	Data       []byte                   `json:"data"`
	Attributes messagex.MessageMetadata `json:"attributes,omitempty"`
}

func toWireMessage(m *messagex.Message) wireMessage {
	return wireMessage{
		MessageID:  m.ID,
		Data:       m.Payload,
		Attributes: m.Metadata,
	}
}

func fromWireMessage(w wireMessage) *messagex.Message {
	return messagex.NewMessage(w.Data, messagex.WithID(w.MessageID), messagex.WithMetadata(w.Attributes))
}

type topicListResponse struct {
	Topics        []string `json:"topics"`
	NextPageToken string   `json:"nextPageToken"`
}

type publishRequest struct {
	Messages []wireMessage `json:"messages"`
}

type publishResponse struct {
	MessageIDs []string `json:"messageIds"`
}

type subscribeRequest struct {
	Topic              string `json:"topic"`
	AckDeadlineSeconds int    `json:"ackDeadlineSeconds"`
}

type wireSubscription struct {
	Name               string `json:"name"`
	Topic              string `json:"topic"`
	AckDeadlineSeconds int    `json:"ackDeadlineSeconds"`
}

type subscriptionListResponse struct {
	Subscriptions []wireSubscription `json:"subscriptions"`
}

type pullRequest struct {
	ReturnImmediately bool `json:"returnImmediately"`
	MaxMessages       int  `json:"maxMessages"`
}

type wireReceivedMessage struct {
	AckID           string      `json:"ackId"`
	Message         wireMessage `json:"message"`
	DeliveryAttempt int         `json:"deliveryAttempt"`
}

type pullResponse struct {
	ReceivedMessages []wireReceivedMessage `json:"receivedMessages"`
}

type acknowledgeRequest struct {
	AckIDs []string `json:"ackIds"`
}

package restpubsub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	meridian "github.com/meridianhq/meridian-go"
	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/messagex"
)

func (r *restPubSub) subscriptionPath(name messagex.SubscriptionName) string {
	return "/v1/subscriptions/" + url.PathEscape(name.QualifiedName(r.scope))
}

// Subscribe implements meridian.SubscriptionService.
func (r *restPubSub) Subscribe(ctx context.Context, topic messagex.Topic, name messagex.SubscriptionName, opts ...meridian.SubscribeOption) (*meridian.Subscription, error) {
	o := meridian.NewDefaultSubscribeOptions()
	for _, opt := range opts {
		opt(o)
	}

	req := subscribeRequest{
		Topic:              topic.TopicName(r.scope),
		AckDeadlineSeconds: int(o.AckDeadline / time.Second),
	}
	resp, err := r.do(ctx, http.MethodPut, r.subscriptionPath(name), req, nil)
	if err != nil {
		return nil, err
	}

	var body wireSubscription
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, errorx.InternalErrorf("malformed subscription response: %v", err)
	}

	return fromWireSubscription(body), nil
}

// ListSubscriptions implements meridian.SubscriptionService.
func (r *restPubSub) ListSubscriptions(ctx context.Context, topic messagex.Topic) ([]meridian.Subscription, error) {
	resp, err := r.do(ctx, http.MethodGet, r.topicPath(topic)+"/subscriptions", nil, nil)
	if err != nil {
		return nil, err
	}

	var body subscriptionListResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, errorx.InternalErrorf("malformed subscription listing response: %v", err)
	}

	subs := make([]meridian.Subscription, 0, len(body.Subscriptions))
	for _, w := range body.Subscriptions {
		subs = append(subs, *fromWireSubscription(w))
	}

	return subs, nil
}

// Pull implements meridian.SubscriptionService. Waiting for messages is the
// service's job; the call simply blocks on the response.
func (r *restPubSub) Pull(ctx context.Context, name messagex.SubscriptionName, opts *meridian.PullOptions) ([]*messagex.ReceivedMessage, error) {
	if opts == nil {
		opts = meridian.NewDefaultPullOptions()
	}

	req := pullRequest{
		ReturnImmediately: opts.ReturnImmediately,
		MaxMessages:       opts.MaxMessages,
	}
	resp, err := r.do(ctx, http.MethodPost, r.subscriptionPath(name)+":pull", req, nil)
	if err != nil {
		return nil, err
	}

	var body pullResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, errorx.InternalErrorf("malformed pull response: %v", err)
	}

	msgs := make([]*messagex.ReceivedMessage, 0, len(body.ReceivedMessages))
	for _, w := range body.ReceivedMessages {
		msgs = append(msgs, &messagex.ReceivedMessage{
			Message:         fromWireMessage(w.Message),
			AckID:           w.AckID,
			DeliveryAttempt: w.DeliveryAttempt,
		})
	}

	return msgs, nil
}

// Ack implements meridian.SubscriptionService.
func (r *restPubSub) Ack(ctx context.Context, name messagex.SubscriptionName, ackIDs ...string) error {
	if len(ackIDs) == 0 {
		return nil
	}

	_, err := r.do(ctx, http.MethodPost, r.subscriptionPath(name)+":acknowledge", acknowledgeRequest{AckIDs: ackIDs}, nil)
	return err
}

// DeleteSubscription implements meridian.SubscriptionService. As with topics,
// deleting a missing subscription is a no-op.
func (r *restPubSub) DeleteSubscription(ctx context.Context, name messagex.SubscriptionName) error {
	_, err := r.do(ctx, http.MethodDelete, r.subscriptionPath(name), nil, nil)
	if errorx.IsNotFoundError(err) {
		return nil
	}
	return err
}

func fromWireSubscription(w wireSubscription) *meridian.Subscription {
	return &meridian.Subscription{
		Name:        messagex.SubscriptionName(stripScope(w.Name)),
		Topic:       messagex.TopicFromName(w.Topic),
		AckDeadline: time.Duration(w.AckDeadlineSeconds) * time.Second,
	}
}

func stripScope(name string) string {
	if _, bare, err := messagex.ExtractScopeFromSubscriptionName(name); err == nil {
		return string(bare)
	}
	return name
}

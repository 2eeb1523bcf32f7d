package restpubsub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	meridian "github.com/meridianhq/meridian-go"
	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/messagex"
)

func (r *restPubSub) topicPath(topic messagex.Topic) string {
	return "/v1/topics/" + url.PathEscape(topic.TopicName(r.scope))
}

// CreateTopic implements meridian.TopicService.
func (r *restPubSub) CreateTopic(ctx context.Context, topic messagex.Topic) error {
	_, err := r.do(ctx, http.MethodPost, r.topicPath(topic), nil, nil)
	return err
}

// ListTopics implements meridian.TopicService. The continuation token is the
// service's own, passed through opaque.
func (r *restPubSub) ListTopics(ctx context.Context, q *meridian.ListQuery) (*meridian.TopicPage, error) {
	query := url.Values{}
	if q != nil {
		if q.MaxResults > 0 {
			query.Set("maxResults", strconv.Itoa(q.MaxResults))
		}
		if q.PageToken != "" {
			query.Set("pageToken", q.PageToken)
		}
	}

	resp, err := r.do(ctx, http.MethodGet, "/v1/topics", nil, query)
	if err != nil {
		return nil, err
	}

	var body topicListResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, errorx.InternalErrorf("malformed topic listing response: %v", err)
	}

	page := &meridian.TopicPage{
		Topics: make([]messagex.Topic, 0, len(body.Topics)),
	}
	for _, name := range body.Topics {
		page.Topics = append(page.Topics, messagex.TopicFromName(name))
	}
	if body.NextPageToken != "" {
		next := &meridian.ListQuery{PageToken: body.NextPageToken}
		if q != nil {
			next.MaxResults = q.MaxResults
		}
		page.Next = next
	}

	return page, nil
}

// DeleteTopic implements meridian.TopicService. The service treats a delete
// of a missing topic as a no-op, so a 404 is not surfaced.
func (r *restPubSub) DeleteTopic(ctx context.Context, topic messagex.Topic) error {
	_, err := r.do(ctx, http.MethodDelete, r.topicPath(topic), nil, nil)
	if errorx.IsNotFoundError(err) {
		return nil
	}
	return err
}

// DeleteTopics implements meridian.TopicService.
func (r *restPubSub) DeleteTopics(ctx context.Context, topics ...messagex.Topic) error {
	return meridian.FanOutDelete(ctx, topics, r.DeleteTopic)
}

// Publish implements meridian.TopicService. Messages with empty payloads are
// rejected locally; the remaining ones go out in a single batch whose
// failure, if any, is reported on every sent slot.
func (r *restPubSub) Publish(ctx context.Context, topic messagex.Topic, messages ...*messagex.Message) (meridian.Errors, error) {
	errs := make(meridian.Errors, len(messages))

	req := publishRequest{Messages: make([]wireMessage, 0, len(messages))}
	sent := make([]int, 0, len(messages))
	for i, msg := range messages {
		if msg == nil || len(msg.Payload) == 0 {
			errs[i] = errorx.InvalidArgumentErrorf("message payload cannot be empty")
			continue
		}

		out := msg
		if r.opts.TracerProvider != nil {
			out = msg.Copy()
			_, span := out.WithSpan(ctx, r.opts.TracerProvider.Tracer("meridian-go/rest"), "publish")
			defer span.End()
		}

		req.Messages = append(req.Messages, toWireMessage(out))
		sent = append(sent, i)
	}

	if len(req.Messages) == 0 {
		return errs, errs.FirstNonNil()
	}

	_, err := r.do(ctx, http.MethodPost, r.topicPath(topic)+":publish", req, nil)
	if err != nil {
		for _, i := range sent {
			errs[i] = err
		}
	}

	return errs, errs.FirstNonNil()
}

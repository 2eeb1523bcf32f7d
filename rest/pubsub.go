package restpubsub

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	meridian "github.com/meridianhq/meridian-go"
	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/httpx"
	"github.com/meridianhq/meridian-go/logrusx"
)

type restPubSub struct {
	scope  string
	l      *logrusx.Logger
	client *httpx.Client

	endpoint string
	headers  http.Header

	opts *meridian.PubSubOptions
}

var (
	_ meridian.PubSub              = (*restPubSub)(nil)
	_ meridian.TopicService        = (*restPubSub)(nil)
	_ meridian.SubscriptionService = (*restPubSub)(nil)
)

// SetupRestPubSub returns a PubSub bound to the hosted service API at the
// configured endpoint. The client never interprets or retries service errors,
// it only maps them to typed errors by status code.
func SetupRestPubSub(l *logrusx.Logger, c *meridian.Config, opts ...meridian.PubSubOption) (*restPubSub, error) {
	if l == nil {
		return nil, errorx.FailedPreconditionErrorf("logger is required")
	}
	if c.Providers.Rest.Endpoint == "" {
		return nil, errorx.InvalidArgumentErrorf("rest provider requires an endpoint")
	}

	pubsubOpts := &meridian.PubSubOptions{}
	for _, opt := range opts {
		opt(pubsubOpts)
	}

	clientOpts := []httpx.Option{}
	if c.Providers.Rest.Timeout > 0 {
		clientOpts = append(clientOpts, httpx.WithTimeout(c.Providers.Rest.Timeout))
	}

	return &restPubSub{
		scope:    c.Scope,
		l:        l,
		client:   httpx.NewClientWithOptions(clientOpts...),
		endpoint: strings.TrimRight(c.Providers.Rest.Endpoint, "/"),
		headers:  httpx.NewAuthorizedHeader(c.Providers.Rest.APIKey),
		opts:     pubsubOpts,
	}, nil
}

// Topics implements meridian.PubSub.
func (r *restPubSub) Topics() meridian.TopicService {
	return r
}

// Subscriptions implements meridian.PubSub.
func (r *restPubSub) Subscriptions() meridian.SubscriptionService {
	return r
}

// Close implements meridian.PubSub. The underlying HTTP client keeps no
// connection state worth tearing down.
func (r *restPubSub) Close() error {
	return nil
}

func (r *restPubSub) do(ctx context.Context, method, path string, body any, query url.Values) (*httpx.Response, error) {
	resp, err := r.client.MakeHTTPRequest(ctx, &httpx.Request{
		Method:          method,
		URL:             r.endpoint + path,
		Body:            body,
		Headers:         r.headers,
		QueryParameters: query,
	})
	if err != nil {
		return nil, errorx.InternalErrorf("request to %s %s failed: %v", method, path, err)
	}

	r.l.WithContext(ctx).
		WithField("method", method).
		WithField("path", path).
		WithField("status_code", resp.StatusCode).
		WithField("duration", resp.Duration.String()).
		Debugf("meridian api call")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}

	return resp, nil
}

// decodeError maps a non-2xx service response to a typed error. The service
// reports errors as `{"error": {"code": 404, "status": "NOT_FOUND",
// "message": "..."}}`; an unparseable body falls back to the HTTP status.
func decodeError(resp *httpx.Response) error {
	code := int(gjson.GetBytes(resp.Body, "error.code").Int())
	if code == 0 {
		code = resp.StatusCode
	}

	message := gjson.GetBytes(resp.Body, "error.message").String()
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return errorx.NewFromStatusCode(code, "%s", message)
}

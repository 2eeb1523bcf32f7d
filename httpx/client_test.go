package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

type HTTPClientTestSuite struct {
	suite.Suite
	testServer *httptest.Server
	client     *Client
}

func TestHTTPClientTestSuite(t *testing.T) {
	suite.Run(t, new(HTTPClientTestSuite))
}

func (s *HTTPClientTestSuite) SetupSuite() {
	s.testServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for key, values := range r.URL.Query() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		if r.Body != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				w.Header().Set("X-Echo-Body", "true")
			}
		}

		fmt.Fprint(w, "test server")
	}))

	s.client = NewHTTPClient()
}

func (s *HTTPClientTestSuite) TearDownSuite() {
	s.testServer.Close()
}

func (s *HTTPClientTestSuite) TestMakeHTTPRequest_InvalidRequest() {
	ctx := context.Background()

	_, err := s.client.MakeHTTPRequest(ctx, &Request{
		URL: s.testServer.URL,
	})

	s.Assert().Error(err)
}

func (s *HTTPClientTestSuite) TestMakeHTTPRequest_SuccessfulHTTPRequest() {
	ctx := context.Background()

	request := &Request{
		Method: http.MethodGet,
		URL:    s.testServer.URL,
		QueryParameters: map[string][]string{
			"test": {"test1", "test2"},
		},
	}

	response, err := s.client.MakeHTTPRequest(ctx, request)

	s.Require().NoError(err)
	s.Assert().Equal(http.StatusOK, response.StatusCode)
	s.Assert().Equal([]string{"test1", "test2"}, response.Headers.Values("test"))
	s.Assert().Equal("test server", string(response.Body))
}

func (s *HTTPClientTestSuite) TestMakeHTTPRequest_MarshalsBody() {
	ctx := context.Background()

	response, err := s.client.MakeHTTPRequest(ctx, &Request{
		Method:  http.MethodPost,
		URL:     s.testServer.URL,
		Body:    map[string]any{"maxMessages": 10},
		Headers: NewAuthorizedHeader("test-key"),
	})

	s.Require().NoError(err)
	s.Assert().Equal("true", response.Headers.Get("X-Echo-Body"))
}

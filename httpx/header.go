package httpx

import (
	"net/http"

	"github.com/meridianhq/meridian-go/errorx"
)

const (
	AuthorizationHeaderKey = "Authorization"
	bearerPrefix           = "Bearer "
)

// NewAuthorizedHeader returns headers carrying the given API key as a bearer
// token. An empty key yields headers without authorization.
func NewAuthorizedHeader(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if apiKey != "" {
		h.Set(AuthorizationHeaderKey, bearerPrefix+apiKey)
	}
	return h
}

func SetAuthorizationHeader(r *http.Request, apiKey string) error {
	if r == nil {
		return errorx.InternalErrorf("request can not be nil")
	}
	r.Header.Set(AuthorizationHeaderKey, bearerPrefix+apiKey)
	return nil
}

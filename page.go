package meridian

import (
	"encoding/base64"
	"sort"

	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/messagex"
)

// ListQuery bounds a listing request. A query returned as TopicPage.Next
// carries the same MaxResults bound plus the continuation token and can be
// passed to the next list call as is.
type ListQuery struct {
	// MaxResults caps the amount of items in the page. Zero or negative
	// means no bound.
	MaxResults int

	// PageToken is the opaque continuation token from a previous page.
	// Empty on the first call.
	PageToken string
}

// EncodePageToken builds an opaque continuation token from the last listed
// name. Backends that paginate client side over a sorted listing share this
// encoding; callers must treat the token as opaque.
func EncodePageToken(lastName string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(lastName))
}

// DecodePageToken returns the last listed name encoded in the token.
func DecodePageToken(token string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", errorx.InvalidArgumentErrorf("malformed page token: %v", err)
	}

	return string(b), nil
}

// PaginateTopics slices a sorted topic listing according to the query.
// Backends without server-side pagination build their pages with it; the
// hosted service paginates on its own.
func PaginateTopics(sorted []messagex.Topic, q *ListQuery) (*TopicPage, error) {
	if q == nil {
		q = &ListQuery{}
	}

	start := 0
	if q.PageToken != "" {
		last, err := DecodePageToken(q.PageToken)
		if err != nil {
			return nil, err
		}
		// The token marks the last name of the previous page. Resume right
		// after it even if that topic has been deleted in between.
		start = sort.Search(len(sorted), func(i int) bool {
			return string(sorted[i]) > last
		})
	}

	end := len(sorted)
	if q.MaxResults > 0 && start+q.MaxResults < end {
		end = start + q.MaxResults
	}

	page := &TopicPage{Topics: sorted[start:end]}
	if end < len(sorted) {
		page.Next = &ListQuery{
			MaxResults: q.MaxResults,
			PageToken:  EncodePageToken(string(sorted[end-1])),
		}
	}

	return page, nil
}

package meridian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/messagex"
)

func TestPageToken(t *testing.T) {
	t.Run("round trips the last name", func(t *testing.T) {
		token := EncodePageToken("orders")
		last, err := DecodePageToken(token)
		require.NoError(t, err)
		assert.Equal(t, "orders", last)
	})

	t.Run("rejects a malformed token", func(t *testing.T) {
		_, err := DecodePageToken("%%%not-base64%%%")
		assert.True(t, errorx.IsInvalidArgumentError(err))
	})
}

func TestPaginateTopics(t *testing.T) {
	sorted := []messagex.Topic{"a", "b", "c", "d", "e"}

	t.Run("nil query returns everything in one page", func(t *testing.T) {
		page, err := PaginateTopics(sorted, nil)
		require.NoError(t, err)
		assert.Equal(t, sorted, page.Topics)
		assert.Nil(t, page.Next)
	})

	t.Run("bounded pages carry a continuation query", func(t *testing.T) {
		page, err := PaginateTopics(sorted, &ListQuery{MaxResults: 2})
		require.NoError(t, err)
		assert.Equal(t, []messagex.Topic{"a", "b"}, page.Topics)
		require.NotNil(t, page.Next)
		assert.Equal(t, 2, page.Next.MaxResults)

		page, err = PaginateTopics(sorted, page.Next)
		require.NoError(t, err)
		assert.Equal(t, []messagex.Topic{"c", "d"}, page.Topics)
		require.NotNil(t, page.Next)

		page, err = PaginateTopics(sorted, page.Next)
		require.NoError(t, err)
		assert.Equal(t, []messagex.Topic{"e"}, page.Topics)
		assert.Nil(t, page.Next)
	})

	t.Run("resumes past a deleted boundary topic", func(t *testing.T) {
		page, err := PaginateTopics(sorted, &ListQuery{MaxResults: 2})
		require.NoError(t, err)
		require.NotNil(t, page.Next)

		shrunk := []messagex.Topic{"a", "c", "d"}
		page, err = PaginateTopics(shrunk, page.Next)
		require.NoError(t, err)
		assert.Equal(t, []messagex.Topic{"c", "d"}, page.Topics)
		assert.Nil(t, page.Next)
	})

	t.Run("a bound larger than the listing ends the walk", func(t *testing.T) {
		page, err := PaginateTopics(sorted, &ListQuery{MaxResults: 50})
		require.NoError(t, err)
		assert.Equal(t, sorted, page.Topics)
		assert.Nil(t, page.Next)
	})

	t.Run("fails on a malformed token", func(t *testing.T) {
		_, err := PaginateTopics(sorted, &ListQuery{PageToken: "%%%not-base64%%%"})
		assert.True(t, errorx.IsInvalidArgumentError(err))
	})
}

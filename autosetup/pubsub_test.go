package autosetup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	meridian "github.com/meridianhq/meridian-go"
	"github.com/meridianhq/meridian-go/errorx"
	"github.com/meridianhq/meridian-go/logrusx"
)

func TestNew(t *testing.T) {
	l := logrusx.New("meridian-go-test", "")

	t.Run("resolves the inmemory provider", func(t *testing.T) {
		ps, err := New(l, &meridian.Config{Scope: "test", Provider: "inmemory"})
		require.NoError(t, err)
		require.NotNil(t, ps)
		assert.NoError(t, ps.Close())
	})

	t.Run("resolves the rest provider", func(t *testing.T) {
		ps, err := New(l, &meridian.Config{
			Scope:    "test",
			Provider: "rest",
			Providers: meridian.ProvidersConfig{
				Rest: meridian.RestConfig{Endpoint: "http://localhost:8085"},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, ps)
		assert.NoError(t, ps.Close())
	})

	t.Run("rejects an unknown provider", func(t *testing.T) {
		_, err := New(l, &meridian.Config{Provider: "carrierpigeon"})
		require.Error(t, err)
		assert.True(t, errorx.IsInvalidArgumentError(err))
		assert.Contains(t, err.Error(), "[rest, kafka, inmemory]")
	})
}

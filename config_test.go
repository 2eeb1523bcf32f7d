package meridian

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/ory/jsonschema/v3"
)

const rootSchema = `{
  "properties": {
    "pubsub": {
      "$ref": "%s"
    }
  }
}
`

func TestConfigSchema(t *testing.T) {
	t.Run("func=AddConfigSchema", func(t *testing.T) {
		c := jsonschema.NewCompiler()
		require.NoError(t, AddConfigSchema(c))

		conf := Config{
			Scope:    "staging",
			Provider: "rest",
			Providers: ProvidersConfig{
				Rest: RestConfig{
					Endpoint: "https://api.meridian.dev",
					APIKey:   "test-key",
				},
			},
		}

		rawConfig, err := sjson.Set("{}", "pubsub", &conf)
		require.NoError(t, err)

		require.NoError(t, c.AddResource("config", bytes.NewBufferString(fmt.Sprintf(rootSchema, ConfigSchemaID))))

		schema, err := c.Compile(context.Background(), "config")
		require.NoError(t, err)

		assert.NoError(t, schema.Validate(bytes.NewBufferString(rawConfig)))
	})

	t.Run("rejects unknown providers", func(t *testing.T) {
		c := jsonschema.NewCompiler()
		require.NoError(t, AddConfigSchema(c))
		require.NoError(t, c.AddResource("config", bytes.NewBufferString(fmt.Sprintf(rootSchema, ConfigSchemaID))))

		schema, err := c.Compile(context.Background(), "config")
		require.NoError(t, err)

		rawConfig, err := sjson.Set("{}", "pubsub", &Config{Provider: "carrierpigeon"})
		require.NoError(t, err)

		assert.Error(t, schema.Validate(bytes.NewBufferString(rawConfig)))
	})
}

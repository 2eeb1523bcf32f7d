package logrusx

import (
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// NewLogFields converts otel attributes to logrus fields. Dots are not valid
// in some log aggregation backends, so they are replaced with underscores.
func NewLogFields(kvs ...attribute.KeyValue) logrus.Fields {
	f := logrus.Fields{}
	for _, kv := range kvs {
		k := strings.ReplaceAll(string(kv.Key), ".", "__")
		f[k] = kv.Value.AsInterface()
	}

	return f
}

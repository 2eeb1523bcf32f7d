package kgox

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/meridianhq/meridian-go/errorx"
)

const ackIDSeparator = "@"

// encodeAckID packs the coordinates of one delivered record into an opaque
// token. Acknowledging the token commits the offset right after the record.
func encodeAckID(topic string, partition int32, offset int64) string {
	raw := fmt.Sprintf("%s%s%d%s%d", topic, ackIDSeparator, partition, ackIDSeparator, offset)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeAckID(ackID string) (topic string, partition int32, offset int64, err error) {
	raw, decodeErr := base64.RawURLEncoding.DecodeString(ackID)
	if decodeErr != nil {
		return "", 0, 0, errorx.InvalidArgumentErrorf("malformed ack id %q", ackID)
	}

	// The topic name may itself contain the separator, so split from the end.
	parts := strings.Split(string(raw), ackIDSeparator)
	if len(parts) < 3 {
		return "", 0, 0, errorx.InvalidArgumentErrorf("malformed ack id %q", ackID)
	}

	p, perr := strconv.ParseInt(parts[len(parts)-2], 10, 32)
	o, oerr := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if perr != nil || oerr != nil {
		return "", 0, 0, errorx.InvalidArgumentErrorf("malformed ack id %q", ackID)
	}

	topic = strings.Join(parts[:len(parts)-2], ackIDSeparator)
	if topic == "" {
		return "", 0, 0, errorx.InvalidArgumentErrorf("malformed ack id %q", ackID)
	}

	return topic, int32(p), o, nil
}

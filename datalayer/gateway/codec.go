package gateway

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var jsonCodec = jsoniter.ConfigFastest

// marshalValue serializes a domain value into the raw JSON payload of a
// cache entry.
func marshalValue[T any](value T) (json.RawMessage, error) {
	data, err := jsonCodec.Marshal(value)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// unmarshalValue deserializes the raw JSON payload of a cache entry back
// into a domain value.
func unmarshalValue[T any](data json.RawMessage) (T, error) {
	var value T

	if err := jsonCodec.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, err
	}

	return value, nil
}

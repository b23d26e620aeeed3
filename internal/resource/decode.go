package resource

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Decode parses a JSON array of records. Records go through a generic map so
// that MongoDB-flavoured documents ("_id", {"$oid": ...}, {"$date": ...})
// decode into the same types as plain ones.
func Decode[T any](body []byte) ([]T, error) {
	var documents []map[string]any
	if err := json.Unmarshal(body, &documents); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}

	if documents == nil {
		return nil, nil
	}

	records := make([]T, 0, len(documents))

	for i, document := range documents {
		var record T

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			WeaklyTypedInput: true,
			Result:           &record,
		})
		if err != nil {
			return nil, err
		}

		if err := decoder.Decode(normalize(document)); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, err)
		}

		records = append(records, record)
	}

	return records, nil
}

func normalize(document map[string]any) map[string]any {
	out := make(map[string]any, len(document))

	for key, value := range document {
		out[key] = unwrap(value)
	}

	if _, ok := out["id"]; !ok {
		if id, ok := out["_id"]; ok {
			out["id"] = id
		}
	}

	return out
}

func unwrap(value any) any {
	wrapper, ok := value.(map[string]any)
	if !ok || len(wrapper) != 1 {
		return value
	}

	if oid, ok := wrapper["$oid"].(string); ok {
		return oid
	}

	date, ok := wrapper["$date"]
	if !ok {
		return value
	}

	switch d := date.(type) {
	case string:
		return d
	case float64:
		return time.UnixMilli(int64(d)).UTC()
	case map[string]any:
		if n, ok := d["$numberLong"].(string); ok {
			if ms, err := strconv.ParseInt(n, 10, 64); err == nil {
				return time.UnixMilli(ms).UTC()
			}
		}
	}

	return value
}

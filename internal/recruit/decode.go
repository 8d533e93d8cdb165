package recruit

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Timestamp layouts seen from the backend: python isoformat() with and without
// fractions, with and without a zone, and plain MySQL DATETIME.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func timestampHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(time.Time{}) || from.Kind() != reflect.String {
		return data, nil
	}

	return parseTimestamp(data.(string))
}

// normalizeKeys copies legacy keys onto their canonical names. The canonical key wins
// when both are present.
func normalizeKeys(item Item, aliases map[string]string) (Item, error) {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", item)
	}

	if len(aliases) == 0 {
		return obj, nil
	}

	out := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	for legacy, canonical := range aliases {
		v, ok := out[legacy]
		if !ok {
			continue
		}
		if _, exists := out[canonical]; !exists {
			out[canonical] = v
		}
		delete(out, legacy)
	}

	return out, nil
}

func (b *Backend) decodeRecord(item Item, aliases map[string]string, target interface{}) error {
	normalized, err := normalizeKeys(item, aliases)
	if err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       timestampHook,
		WeaklyTypedInput: true,
		Result:           target,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(normalized); err != nil {
		return err
	}

	return b.validate.Struct(target)
}

// decodeList decodes and validates every item, failing on the first bad one.
func decodeList[T any](b *Backend, endpoint string, items []Item, aliases map[string]string) ([]T, error) {
	out := make([]T, 0, len(items))

	for idx, item := range items {
		var record T
		if err := b.decodeRecord(item, aliases, &record); err != nil {
			return nil, &MalformedResponseError{
				Endpoint: endpoint,
				Err:      fmt.Errorf("item %d: %w", idx, err),
			}
		}
		out = append(out, record)
	}

	return out, nil
}

// Package codec converts persisted documents to and from their JSON form
// without ever failing the caller.
package codec

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// TryDecode parses raw into a T. The boolean is false when raw is blank,
// malformed, or the JSON literal null.
func TryDecode[T any](raw string) (T, bool) {
	var zero T
	if strings.TrimSpace(raw) == "" {
		return zero, false
	}
	if bytes.Equal(bytes.TrimSpace([]byte(raw)), []byte("null")) {
		return zero, false
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return zero, false
	}
	return out, true
}

// Decode parses raw into a T, returning fallback whenever TryDecode would
// report failure.
func Decode[T any](raw string, fallback T) T {
	out, ok := TryDecode[T](raw)
	if !ok {
		return fallback
	}
	return out
}

// Encode serializes v. It returns ("", false) instead of an error when v
// cannot be represented as JSON.
func Encode(v any) (string, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// DecodeRecords parses raw as a JSON array and converts each element with
// decode, skipping the elements it rejects. ok is false only when raw itself
// is blank, malformed, null or not an array.
func DecodeRecords[T any](raw string, decode func(json.RawMessage) (T, bool)) (records []T, skipped int, ok bool) {
	elems, ok := TryDecode[[]json.RawMessage](raw)
	if !ok {
		return nil, 0, false
	}

	records = make([]T, 0, len(elems))
	for _, elem := range elems {
		rec, ok := decode(elem)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, true
}

// ReviveTime parses a stored timestamp: an RFC 3339 string or Unix
// milliseconds.
func ReviveTime(raw json.RawMessage) (time.Time, bool) {
	if s, ok := TryDecode[string](string(raw)); ok {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if ms, ok := TryDecode[int64](string(raw)); ok {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

package task

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// dueLayouts are tried in order when parsing a due date.
var dueLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// Normalize converts a raw server payload into the canonical collection.
//
// Accepted shapes are a bare sequence, an object with a "tasks" sequence
// and an object with a "data" sequence, checked in that order. Anything
// else yields an empty collection. Normalize never fails.
func Normalize(raw any) []Task {
	items, ok := sequence(decodeBytes(raw))
	if !ok {
		return []Task{}
	}

	out := make([]Task, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, fromMap(obj))
	}
	return out
}

// NormalizeOne maps a single raw task, unwrapping a "task" or "data"
// envelope when present. It returns false when raw is not an object or
// carries neither an id nor a title, as in a bare acknowledgement.
func NormalizeOne(raw any) (Task, bool) {
	obj, ok := decodeBytes(raw).(map[string]any)
	if !ok {
		return Task{}, false
	}
	for _, key := range []string{"task", "data"} {
		if inner, ok := obj[key].(map[string]any); ok {
			obj = inner
			break
		}
	}
	if idOf(obj) == "" && obj["title"] == nil {
		return Task{}, false
	}
	return fromMap(obj), true
}

// IsCompleted applies the completion rule to a raw task: boolean true,
// numeric 1 in "completed" or "status", or the string "yes" in any case.
func IsCompleted(raw map[string]any) bool {
	switch v := raw["completed"].(type) {
	case bool:
		if v {
			return true
		}
	case string:
		if strings.EqualFold(strings.TrimSpace(v), "yes") {
			return true
		}
	default:
		if isOne(v) {
			return true
		}
	}
	return isOne(raw["status"])
}

func decodeBytes(raw any) any {
	var data []byte
	switch v := raw.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		return raw
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil
	}
	return decoded
}

func sequence(raw any) ([]any, bool) {
	if items, ok := asSlice(raw); ok {
		return items, true
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	if items, ok := asSlice(obj["tasks"]); ok {
		return items, true
	}
	if items, ok := asSlice(obj["data"]); ok {
		return items, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func fromMap(obj map[string]any) Task {
	t := Task{
		ID:          idOf(obj),
		Title:       stringOf(obj["title"]),
		Description: stringOf(obj["description"]),
		Completed:   IsCompleted(obj),
	}
	if s, ok := obj["priority"].(string); ok {
		t.Priority, _ = ParsePriority(s)
	}
	if s, ok := obj["dueDate"].(string); ok {
		t.Due = parseDue(s)
	}
	return t
}

func idOf(obj map[string]any) string {
	if id := scalarString(obj["_id"]); id != "" {
		return id
	}
	return scalarString(obj["id"])
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

func isOne(v any) bool {
	switch x := v.(type) {
	case float64:
		return x == 1
	case float32:
		return x == 1
	case int:
		return x == 1
	case int64:
		return x == 1
	case int32:
		return x == 1
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 1
	default:
		return false
	}
}

func parseDue(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dueLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			d := Date(parsed)
			return &d
		}
	}
	return nil
}

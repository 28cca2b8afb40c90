// Package transcript normalizes raw interview conversation events and
// groups them into question/answer rounds.
package transcript

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Event is one conversational record as stored by the transcript source.
// Producers disagree on field names and nesting, so the shape is kept as
// the decoded JSON document and probed with the extractors below.
type Event map[string]any

// Canonical roles produced by RoleOf.
const (
	RoleBot     = "bot"
	RoleUser    = "user"
	RoleUnknown = "unknown"
)

// roleKeys is the probe order for role-like fields.
var roleKeys = []string{"role", "sender", "speaker"}

var (
	botMarkers  = []string{"interviewer", "assistant", "bot", "system", "agent"}
	userMarkers = []string{"candidate", "user", "applicant"}
)

// ContainerPrecedence is the unwrap order for nested payload containers.
// TextOf tries each key in this exact order and the first non-empty
// result wins.
var ContainerPrecedence = []string{
	"payload", "delta", "message", "data", "body",
	"parts", "args", "segment", "chunk", "value",
}

// directTextKeys are tried as plain string fields before any unwrapping.
var directTextKeys = []string{"text", "content", "message"}

// RoleOf classifies an event's speaker. Role-like fields are probed in
// priority order, lowercased, and matched by substring against the known
// interviewer and candidate markers. An unmatched non-empty value is
// returned as-is so round grouping can still see it.
func RoleOf(ev Event) string {
	var raw string
	for _, key := range roleKeys {
		if s, ok := ev[key].(string); ok && s != "" {
			raw = strings.ToLower(s)
			break
		}
	}
	for _, marker := range botMarkers {
		if strings.Contains(raw, marker) {
			return RoleBot
		}
	}
	for _, marker := range userMarkers {
		if strings.Contains(raw, marker) {
			return RoleUser
		}
	}
	if raw != "" {
		return raw
	}
	return RoleUnknown
}

// TextOf extracts the plain text of an event. Direct string fields win;
// otherwise nested containers are unwrapped in ContainerPrecedence order.
// It never panics and returns "" when nothing textual is found.
func TextOf(ev Event) string {
	for _, key := range directTextKeys {
		if s, ok := ev[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	for _, key := range ContainerPrecedence {
		if v, ok := ev[key]; ok {
			if s := flattenText(v); strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// flattenText recursively reduces an arbitrary JSON value to text.
// Arrays concatenate their elements, objects recurse through the direct
// text keys and then the container precedence list, and primitives are
// stringified.
func flattenText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		var b strings.Builder
		for _, elem := range x {
			b.WriteString(flattenText(elem))
		}
		return b.String()
	case map[string]any:
		for _, key := range directTextKeys {
			if s, ok := x[key].(string); ok && s != "" {
				return s
			}
		}
		for _, key := range ContainerPrecedence {
			if inner, ok := x[key]; ok {
				if s := flattenText(inner); s != "" {
					return s
				}
			}
		}
		return ""
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// roundOf returns the explicit round/turn number carried by the event,
// when present and a sane positive integer.
func roundOf(ev Event) (int, bool) {
	for _, key := range []string{"round", "turn"} {
		switch n := ev[key].(type) {
		case float64:
			if n >= 1 && n == math.Trunc(n) {
				return int(n), true
			}
		case int:
			if n >= 1 {
				return n, true
			}
		}
	}
	return 0, false
}

// interviewerOf returns the interviewer tag of an event, if any.
func interviewerOf(ev Event) string {
	for _, key := range []string{"interviewer", "interviewerRole", "agent", "speaker"} {
		if s, ok := ev[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func typeOf(ev Event) string {
	if s, ok := ev["type"].(string); ok {
		return s
	}
	return ""
}

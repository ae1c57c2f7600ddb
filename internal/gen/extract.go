package gen

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// fencedBlock matches the first markdown code fence in a completion. Models
// usually tag the fence with "json" but sometimes leave it bare.
var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// ExtractJSON recovers the JSON payload from a raw model completion.
//
// A fenced block always wins over surrounding prose; without one the whole
// trimmed text is treated as the candidate. The returned payload is
// guaranteed to be a valid top-level JSON object or array. Any failure
// returns a *MalformedOutputError carrying the original text; this function
// never panics and never returns a partial value.
func ExtractJSON(raw string) (json.RawMessage, error) {
	candidate := strings.TrimSpace(raw)
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	if candidate == "" {
		return nil, &MalformedOutputError{Raw: raw, Err: errors.New("empty completion")}
	}

	var value interface{}
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}

	switch value.(type) {
	case map[string]interface{}, []interface{}:
	default:
		return nil, &MalformedOutputError{Raw: raw, Err: errors.New("top-level value is not an object or array")}
	}

	return json.RawMessage(candidate), nil
}

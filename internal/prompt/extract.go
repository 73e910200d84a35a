package prompt

import (
	"encoding/json"
	"strings"
)

// ParseAssistantJSON attempts to recover a JSON value embedded in raw
// assistant text, tolerating surrounding prose the model was told not to
// emit but sometimes does.
//
// The heuristic: parse the whole trimmed text when it already starts with
// '{' or '['; otherwise parse the span from the first '{' to the last '}'.
// The span step is first-brace/last-brace on purpose and can misfire on a
// '}' inside a string literal; callers treat a false result as "plain
// prose", so a miss here is never an error.
func ParseAssistantJSON(text string) (interface{}, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		var v interface{}
		if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
			return nil, false
		}
		return v, true
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}

	var v interface{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &v); err != nil {
		return nil, false
	}
	return v, true
}

// DecodeReply narrows a value produced by ParseAssistantJSON into the
// typed reply structure. It only accepts JSON objects carrying an intent;
// anything else reports false so the caller can fall back to plain text.
func DecodeReply(v interface{}) (*AssistantReply, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, false
	}

	var reply AssistantReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, false
	}

	if reply.Intent == "" {
		return nil, false
	}

	return &reply, true
}

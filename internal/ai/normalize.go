package ai

import (
	"encoding/json"
	"fmt"
)

// responseKeys are the mapping keys searched, in order, for response text.
var responseKeys = []string{"text", "content", "message", "response"}

// Texter is implemented by response values that carry their own text.
type Texter interface {
	Text() string
}

// NormalizeResponse reduces a model response of unknown shape to plain text.
//
// Strings are returned as-is, sequences yield their first element, mappings
// yield the first of text/content/message/response that is present, and
// anything else falls back to Text(), String() or its JSON encoding. Raw JSON
// bytes are decoded first. nil yields "".
func NormalizeResponse(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case json.RawMessage:
		return normalizeJSON(r)
	case []byte:
		return normalizeJSON(r)
	case []any:
		if len(r) == 0 {
			return ""
		}
		return NormalizeResponse(r[0])
	case []string:
		if len(r) == 0 {
			return ""
		}
		return r[0]
	case []map[string]any:
		if len(r) == 0 {
			return ""
		}
		return NormalizeResponse(r[0])
	case map[string]any:
		for _, key := range responseKeys {
			if val, ok := r[key]; ok {
				return NormalizeResponse(val)
			}
		}
	case map[string]string:
		for _, key := range responseKeys {
			if val, ok := r[key]; ok {
				return val
			}
		}
	case Texter:
		return r.Text()
	case fmt.Stringer:
		return r.String()
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func normalizeJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return string(data)
	}
	return NormalizeResponse(decoded)
}

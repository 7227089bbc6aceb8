package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// errUnreachable marks requests that never got an HTTP response.
var errUnreachable = errors.New("endpoint unreachable")

// reply is a provider response decoded without a fixed schema.
// value is nil when the body is not JSON.
type reply struct {
	status int
	body   []byte
	value  any
}

// fields returns the top-level JSON object, or nil.
func (r *reply) fields() map[string]any {
	m, _ := r.value.(map[string]any)
	return m
}

// postJSON sends payload to endpoint and reads back whatever comes. Status
// handling is left to the caller since every provider reports failures differently.
func postJSON(ctx context.Context, client *http.Client, endpoint string, header map[string]string, payload any) (*reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response: %w", err)
	}

	r := &reply{status: resp.StatusCode, body: raw}
	if len(raw) > 0 {
		var v any
		if json.Unmarshal(raw, &v) == nil {
			r.value = v
		}
	}
	return r, nil
}

// lookup walks nested JSON objects along path.
func lookup(v any, path ...string) any {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

func stringAt(v any, path ...string) string {
	s, _ := lookup(v, path...).(string)
	return s
}

// intAt reads a JSON number; encoding/json decodes every number as float64.
func intAt(v any, path ...string) int {
	n, _ := lookup(v, path...).(float64)
	return int(n)
}

// snippet trims a response body for error messages.
func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// ABOUTME: Response envelope normalizer for upstream bodies
// ABOUTME: Guarantees the caller always receives a JSON document

package services

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// NormalizeBody turns any upstream body into valid JSON. JSON bodies pass
// through verbatim; anything else is wrapped as {"error": <text>}. An empty
// body becomes {} on success and {"error": <status text>} otherwise.
func NormalizeBody(status int, raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		if status >= 200 && status < 300 {
			return json.RawMessage(`{}`)
		}
		return errorEnvelope(http.StatusText(status))
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	return errorEnvelope(string(raw))
}

func errorEnvelope(message string) json.RawMessage {
	if message == "" {
		message = "upstream error"
	}
	data, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return json.RawMessage(`{"error":"upstream error"}`)
	}
	return data
}

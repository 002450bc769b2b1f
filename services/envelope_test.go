package services

import (
	"encoding/json"
	"testing"
)

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		raw    string
		want   string
	}{
		{"json object passes through", 200, `{"a":1}`, `{"a":1}`},
		{"json array passes through", 200, `[1,2]`, `[1,2]`},
		{"json error passes through", 404, `{"message":"not found"}`, `{"message":"not found"}`},
		{"plain text is wrapped", 500, `Internal Server Error`, `{"error":"Internal Server Error"}`},
		{"html is wrapped", 502, `<html>bad gateway</html>`, `{"error":"<html>bad gateway</html>"}`},
		{"truncated json is wrapped", 200, `{"a":`, `{"error":"{\"a\":"}`},
		{"empty success", 204, ``, `{}`},
		{"empty failure", 503, "  \n", `{"error":"Service Unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBody(tt.status, []byte(tt.raw))
			if !json.Valid(got) {
				t.Fatalf("NormalizeBody returned invalid JSON: %s", got)
			}
			if string(got) != tt.want {
				t.Errorf("NormalizeBody(%d, %q) = %s, want %s", tt.status, tt.raw, got, tt.want)
			}
		})
	}
}

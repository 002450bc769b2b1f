// ABOUTME: Generic forwarding of inbound proxy requests to the VIP Marketplace API
// ABOUTME: Routes differ only by upstream path template, headers and query/body transforms

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/middleware"
	"github.com/markalston/vip-marketplace-proxy/services"
)

// maxRequestBody bounds inbound JSON bodies.
const maxRequestBody = 5 << 20

// inbound is a decoded proxy request.
type inbound struct {
	env  *config.Environment
	raw  []byte         // body as received, nil when empty
	body map[string]any // decoded JSON object; numbers kept as json.Number
}

// transformed is what a route's transform contributes to the upstream call.
type transformed struct {
	params map[string]string // path parameters not present in the inbound path
	query  url.Values
	body   any
}

// forwardSpec describes one proxied Adobe operation.
type forwardSpec struct {
	name      string // metrics/log label
	method    string // upstream method
	path      string // upstream path template, e.g. /v3/customers/{customerId}
	query     func(r *http.Request) url.Values
	headers   func(r *http.Request) http.Header
	transform func(in *inbound, now time.Time) (*transformed, error)
}

// decodeBody reads a JSON object body. An empty body decodes to {}.
func decodeBody(r *http.Request) (map[string]any, []byte, error) {
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return map[string]any{}, nil, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		return nil, nil, err
	}
	if len(raw) > maxRequestBody {
		return nil, nil, &http.MaxBytesError{Limit: maxRequestBody}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, nil, services.Invalid("Invalid JSON body: %v", err)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, raw, nil
}

// readInbound decodes the body and resolves the target environment. The
// query string takes precedence over an "environment" body field.
func readInbound(r *http.Request, cfg *config.Config) (*inbound, error) {
	body, raw, err := decodeBody(r)
	if err != nil {
		return nil, err
	}

	name := r.URL.Query().Get("environment")
	if name == "" {
		name, _ = body["environment"].(string)
	}
	env, err := cfg.Environment(name)
	if err != nil {
		return nil, err
	}

	return &inbound{env: env, raw: raw, body: body}, nil
}

func marshalBody(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// forwardedBody is the inbound body minus the proxy's own "environment"
// field. Bodies without it are sent byte for byte.
func (in *inbound) forwardedBody() ([]byte, error) {
	if _, ok := in.body["environment"]; !ok {
		if in.raw == nil {
			return []byte("{}"), nil
		}
		return in.raw, nil
	}
	body := make(map[string]any, len(in.body))
	for k, v := range in.body {
		if k != "environment" {
			body[k] = v
		}
	}
	return marshalBody(body)
}

var pathParam = regexp.MustCompile(`\{(\w+)\}`)

// expandPath substitutes {name} segments, escaping each value.
func expandPath(template string, lookup func(name string) string) (string, error) {
	var missing string
	path := pathParam.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		value := lookup(name)
		if value == "" && missing == "" {
			missing = name
		}
		return url.PathEscape(value)
	})
	if missing != "" {
		return "", services.Invalid("%s is required", missing)
	}
	return path, nil
}

// forward builds the handler for one Adobe operation.
func (h *Handler) forward(spec forwardSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := readInbound(r, h.cfg)
		if err != nil {
			writeFailure(w, r, err)
			return
		}

		call := services.Call{Name: spec.name, Method: spec.method, Query: url.Values{}}
		if spec.query != nil {
			for k, v := range spec.query(r) {
				call.Query[k] = v
			}
		}
		if spec.headers != nil {
			call.Headers = spec.headers(r)
		}

		params := map[string]string{}
		if spec.transform != nil {
			t, err := spec.transform(in, h.now())
			if err != nil {
				writeFailure(w, r, err)
				return
			}
			for k, v := range t.params {
				params[k] = v
			}
			for k, v := range t.query {
				call.Query[k] = v
			}
			if call.Body, err = marshalBody(t.body); err != nil {
				writeFailure(w, r, err)
				return
			}
		} else if spec.method != http.MethodGet {
			if call.Body, err = in.forwardedBody(); err != nil {
				writeFailure(w, r, err)
				return
			}
		}

		call.Path, err = expandPath(spec.path, func(name string) string {
			if v, ok := params[name]; ok {
				return v
			}
			return r.PathValue(name)
		})
		if err != nil {
			writeFailure(w, r, err)
			return
		}

		ctx, cancel := h.deadline(r)
		defer cancel()

		resp, err := h.vip.Do(ctx, in.env, call)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeUpstream(w, resp)
	}
}

// Query policies

// forwardQuery passes every inbound query parameter except environment.
func forwardQuery(r *http.Request) url.Values {
	q := url.Values{}
	for k, v := range r.URL.Query() {
		if k != "environment" {
			q[k] = v
		}
	}
	return q
}

// previewQuery passes only the order preview flag.
func previewQuery(r *http.Request) url.Values {
	q := url.Values{}
	if preview := r.URL.Query().Get("preview"); preview != "" {
		q.Set("preview", preview)
	}
	return q
}

// Header policies

func correlationHeaders(r *http.Request) http.Header {
	h := http.Header{}
	h.Set("X-Correlation-ID", services.NewCorrelationID())
	return h
}

// traceHeaders adds X-Request-Id, reusing the inbound request's ID when
// the logging middleware assigned one.
func traceHeaders(r *http.Request) http.Header {
	h := correlationHeaders(r)
	requestID := middleware.RequestID(r.Context())
	if requestID == "" {
		requestID = services.NewCorrelationID()
	}
	h.Set("X-Request-Id", requestID)
	return h
}

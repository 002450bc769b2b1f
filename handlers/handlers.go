// ABOUTME: HTTP handlers for the VIP Marketplace proxy
// ABOUTME: Holds shared dependencies and serves the status, token and devs.ai endpoints

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/models"
	"github.com/markalston/vip-marketplace-proxy/services"
)

type Handler struct {
	cfg    *config.Config
	tokens *services.TokenProvider
	vip    *services.VIPClient
	devs   *services.DevsAIClient
	now    func() time.Time
}

func NewHandler(cfg *config.Config, tokens *services.TokenProvider, vip *services.VIPClient, devs *services.DevsAIClient) *Handler {
	return &Handler{
		cfg:    cfg,
		tokens: tokens,
		vip:    vip,
		devs:   devs,
		now:    time.Now,
	}
}

// Status reports liveness and the environments this instance serves.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{
		Status:       "ok",
		Message:      "VIP Marketplace proxy is running",
		Timestamp:    h.now().UTC().Format(time.RFC3339),
		Port:         h.cfg.Port,
		Environments: h.cfg.EnvironmentNames(),
	})
}

// Authenticate exchanges the environment's client credentials for an IMS
// token (or returns the cached one). Any IMS failure is answered with 500.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	in, err := readInbound(r, h.cfg)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	ctx, cancel := h.deadline(r)
	defer cancel()

	token, err := h.tokens.Token(ctx, in.env)
	if err != nil {
		slog.Error("Adobe authentication failed", "environment", in.env.Name, "error", err)
		if errors.Is(err, services.ErrCredentialsMissing) {
			writeError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeError(w, "Failed to authenticate with Adobe IMS: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthenticateResponse{
		JWT:         nil,
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.RemainingSeconds(h.tokens.Now()),
	})
}

// InvalidateToken drops the cached IMS token for ?environment= so the next
// call fetches a fresh one.
func (h *Handler) InvalidateToken(w http.ResponseWriter, r *http.Request) {
	env, err := h.cfg.Environment(r.URL.Query().Get("environment"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	h.tokens.Invalidate(r.Context(), env.Name)
	w.WriteHeader(http.StatusNoContent)
}

// DevsAIChatCompletion relays a chat completion to devs.ai. The caller's
// apiKey travels in the X-Authorization header, never in the forwarded body.
func (h *Handler) DevsAIChatCompletion(w http.ResponseWriter, r *http.Request) {
	body, _, err := decodeBody(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	apiKey, _ := body["apiKey"].(string)
	delete(body, "apiKey")
	delete(body, "environment")

	payload, err := marshalBody(body)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	ctx, cancel := h.deadline(r)
	defer cancel()

	resp, err := h.devs.ChatCompletion(ctx, apiKey, payload)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeUpstream(w, resp)
}

// deadline bounds all upstream work for one inbound request, token fetch
// included, by a single UPSTREAM_TIMEOUT.
func (h *Handler) deadline(r *http.Request) (context.Context, context.CancelFunc) {
	if h.cfg.UpstreamTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.cfg.UpstreamTimeout)
}

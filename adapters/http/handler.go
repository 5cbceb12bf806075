// Package http exposes the webhook callback endpoint. It owns transport
// concerns only: signature verification, body limits, and response
// writing. Everything between the raw body and the response body is the
// webhook service's job.
package http

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/artpar/wxgate/adapters/metrics"
	"github.com/artpar/wxgate/app"
	"github.com/artpar/wxgate/domain/signature"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps callback bodies. Envelope payloads are small; a
// larger body is not a message.
const maxBodyBytes = 1 << 20

// Handler serves the webhook callback endpoints.
type Handler struct {
	svc      *app.WebhookService
	path     string
	logger   zerolog.Logger
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer

	mu    sync.RWMutex
	token string

	oauth *oauthRoutes
}

// NewHandler creates a webhook HTTP handler. token is the callback token
// configured on the platform; path is the callback mount point.
func NewHandler(svc *app.WebhookService, token, path string, logger zerolog.Logger, m *metrics.Collector, gatherer prometheus.Gatherer) *Handler {
	if path == "" {
		path = "/wechat"
	}
	return &Handler{
		svc:      svc,
		token:    token,
		path:     path,
		logger:   logger,
		metrics:  m,
		gatherer: gatherer,
	}
}

// Router builds the route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get(h.path, h.handleEcho)
	r.Post(h.path, h.handleMessage)
	r.Post(h.path+"/component", h.handleComponent)

	if h.oauth != nil {
		r.Get("/oauth/login", h.oauth.handleLogin)
		r.Get("/oauth/callback", h.oauth.handleCallback)
	}

	return r
}

// SetToken replaces the callback token. Safe to call while serving;
// used for config hot reload.
func (h *Handler) SetToken(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

func (h *Handler) currentToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleEcho answers the platform's endpoint-verification handshake: echo
// the challenge string back when the signature checks out.
func (h *Handler) handleEcho(w http.ResponseWriter, r *http.Request) {
	if !h.verifySignature(w, r) {
		return
	}
	w.Write([]byte(r.URL.Query().Get("echostr")))
}

// handleMessage serves the message callback. The response body is the
// rendered reply, or empty to acknowledge without replying.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	if !h.verifySignature(w, r) {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read callback body")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	out, err := h.svc.Handle(r.Context(), string(body))
	if err != nil {
		if app.IsDecodeError(err) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		// Handler failures are logged by the service. Acknowledge with an
		// empty body so the platform does not retry delivery.
		w.WriteHeader(http.StatusOK)
		return
	}
	writeXML(w, out)
}

// handleComponent serves the platform-management event callback.
func (h *Handler) handleComponent(w http.ResponseWriter, r *http.Request) {
	if !h.verifySignature(w, r) {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read component body")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	out, err := h.svc.HandleComponent(r.Context(), string(body))
	if err != nil {
		if app.IsDecodeError(err) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Write([]byte(out))
}

// verifySignature rejects callbacks that were not signed with our token.
func (h *Handler) verifySignature(w http.ResponseWriter, r *http.Request) bool {
	q := r.URL.Query()
	err := signature.Check(h.currentToken(), q.Get("signature"), q.Get("timestamp"), q.Get("nonce"))
	if err != nil {
		if h.metrics != nil {
			h.metrics.SignatureFailures.Inc()
		}
		h.logger.Warn().
			Str("remote", r.RemoteAddr).
			Str("path", r.URL.Path).
			Msg("rejected callback with invalid signature")
		http.Error(w, "invalid signature", http.StatusForbidden)
		return false
	}
	return true
}

func writeXML(w http.ResponseWriter, body string) {
	if body == "" {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(body))
}

// Server wraps the handler in an http.Server with sane timeouts.
func (h *Handler) Server(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	if readTimeout == 0 {
		readTimeout = 10 * time.Second
	}
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}
	return &http.Server{
		Addr:         addr,
		Handler:      h.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/artpar/wxgate/adapters/oauth"
	"github.com/artpar/wxgate/ports"
	"github.com/rs/zerolog"
)

// oauthRoutes serves the web OAuth login flow. State nonces and issued
// tokens live in the session store.
type oauthRoutes struct {
	client   *oauth.Client
	sessions ports.SessionStore
	scope    string
	ttl      time.Duration
	logger   zerolog.Logger
}

// EnableOAuth mounts /oauth/login and /oauth/callback on the next Router
// call.
func (h *Handler) EnableOAuth(client *oauth.Client, sessions ports.SessionStore, scope string, ttl time.Duration) {
	h.oauth = &oauthRoutes{
		client:   client,
		sessions: sessions,
		scope:    scope,
		ttl:      ttl,
		logger:   h.logger,
	}
}

func (o *oauthRoutes) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := o.client.State()
	if err != nil {
		o.logger.Error().Err(err).Msg("failed to generate oauth state")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := o.sessions.Set(r.Context(), stateKey(state), []byte("pending"), o.ttl); err != nil {
		o.logger.Error().Err(err).Msg("failed to store oauth state")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, o.client.AuthorizeURL(o.scope, state), http.StatusFound)
}

func (o *oauthRoutes) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		http.Error(w, "missing code or state", http.StatusBadRequest)
		return
	}

	_, ok, err := o.sessions.Get(r.Context(), stateKey(state))
	if err != nil {
		o.logger.Error().Err(err).Msg("failed to load oauth state")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "unknown or expired state", http.StatusForbidden)
		return
	}
	// One-shot nonce.
	if err := o.sessions.Delete(r.Context(), stateKey(state)); err != nil {
		o.logger.Warn().Err(err).Msg("failed to delete oauth state")
	}

	tok, err := o.client.ExchangeCode(r.Context(), code)
	if err != nil {
		o.logger.Warn().Err(err).Str("state", state).Msg("oauth code exchange failed")
		http.Error(w, "code exchange failed", http.StatusBadGateway)
		return
	}

	raw, err := json.Marshal(tok)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := o.sessions.Set(r.Context(), tokenKey(tok.OpenID), raw, o.ttl); err != nil {
		o.logger.Error().Err(err).Msg("failed to store oauth token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"openid": tok.OpenID,
		"scope":  tok.Scope,
	})
}

func stateKey(state string) string { return "oauth:state:" + state }
func tokenKey(openID string) string { return "oauth:token:" + openID }

package upstream

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/accountgate/accountgate/internal/models"
	"github.com/accountgate/accountgate/pkg/logger"
	"github.com/accountgate/accountgate/pkg/metrics"
)

const refreshPath = "/api/auth/refresh"

// TokenSource is the token store contract the refresh protocol needs.
// Implemented by tokenstore.Store.
type TokenSource interface {
	Access() string
	Refresh() string
	SetAccessToken(string)
	SetRefreshToken(string)
	Clear()
}

// Session is the authenticated client for one browser exchange: it attaches
// the bearer token from its TokenSource and, on a 401, runs the refresh
// protocol: mint a new pair via the public client, store it, then retry the
// original request exactly once.
//
// The session never navigates; an irrecoverable 401 clears the token store
// and surfaces ErrSessionExpired so the calling guard decides the redirect.
type Session struct {
	pub    *Client
	priv   *Client
	tokens TokenSource
}

// NewSession couples the client pair with one request's token store.
func NewSession(pub, priv *Client, tokens TokenSource) *Session {
	return &Session{pub: pub, priv: priv, tokens: tokens}
}

// Do performs an authenticated upstream call. When no access token is
// present the request goes out without an Authorization header and the
// upstream decides. The returned Response is the retried outcome after a
// successful refresh; on refresh failure it is the original 401 response,
// paired with ErrSessionExpired.
func (s *Session) Do(ctx context.Context, method, path string, body []byte, contentType string, header http.Header) (*Response, error) {
	hdr := http.Header{}
	for k, vs := range header {
		hdr[k] = vs
	}
	if at := s.tokens.Access(); at != "" {
		hdr.Set("Authorization", "Bearer "+at)
	}

	resp, err := s.priv.Do(ctx, method, path, body, contentType, hdr)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusUnauthorized {
		return resp, nil
	}

	// one refresh cycle, one retry; a 401 on the retried request is final
	access, refresh, rerr := s.refresh(ctx)
	if rerr != nil {
		logger.Debugf("refresh failed for %s %s: %v", method, path, rerr)
		metrics.RefreshAttempts.WithLabelValues("failure").Inc()
		s.tokens.Clear()
		return resp, ErrSessionExpired
	}
	metrics.RefreshAttempts.WithLabelValues("success").Inc()
	s.tokens.SetAccessToken(access)
	s.tokens.SetRefreshToken(refresh)

	hdr.Set("Authorization", "Bearer "+access)
	return s.priv.Do(ctx, method, path, body, contentType, hdr)
}

// GetJSON performs Do and decodes a 2xx body into out.
func (s *Session) GetJSON(ctx context.Context, path string, out interface{}) (*Response, error) {
	resp, err := s.Do(ctx, http.MethodGet, path, nil, "", nil)
	if err != nil {
		return resp, err
	}
	if !resp.OK() {
		return resp, nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return resp, err
	}
	return resp, nil
}

// refresh exchanges the refresh token for a new pair via the public client,
// so a failing refresh cannot recurse into this session.
func (s *Session) refresh(ctx context.Context) (access, refresh string, err error) {
	rt := s.tokens.Refresh()
	if rt == "" {
		return "", "", ErrSessionExpired
	}
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+rt)
	resp, err := s.pub.Do(ctx, http.MethodPost, refreshPath, nil, "", hdr)
	if err != nil {
		return "", "", err
	}
	if !resp.OK() {
		return "", "", ErrSessionExpired
	}
	var rr models.RefreshResponse
	if err := json.Unmarshal(resp.Body, &rr); err != nil {
		return "", "", err
	}
	access, refresh = rr.Tokens()
	if access == "" || refresh == "" {
		return "", "", ErrSessionExpired
	}
	return access, refresh, nil
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/accountgate/accountgate/internal/models"
	"github.com/accountgate/accountgate/internal/tokenstore"
	"github.com/accountgate/accountgate/internal/upstream"
)

const (
	ctxTokens   = "gate.tokens"
	ctxUpstream = "gate.upstream"
	ctxProfile  = "gate.profile"
)

// SessionBinder attaches a per-request token store and authenticated
// upstream session to the context. Every route group mounts this first;
// public handlers need the store too (login sets cookies through it).
func SessionBinder(pub, priv *upstream.Client, opts tokenstore.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		ts := tokenstore.New(c.Writer, c.Request, opts)
		c.Set(ctxTokens, ts)
		c.Set(ctxUpstream, upstream.NewSession(pub, priv, ts))
		c.Next()
	}
}

// Tokens returns the request's cookie-backed token store.
func Tokens(c *gin.Context) *tokenstore.Store {
	return c.MustGet(ctxTokens).(*tokenstore.Store)
}

// Upstream returns the request's authenticated upstream session.
func Upstream(c *gin.Context) *upstream.Session {
	return c.MustGet(ctxUpstream).(*upstream.Session)
}

// Profile returns the profile hydrated by AuthGate for this request.
func Profile(c *gin.Context) (models.UserProfile, bool) {
	v, ok := c.Get(ctxProfile)
	if !ok {
		return models.UserProfile{}, false
	}
	return v.(models.UserProfile), true
}

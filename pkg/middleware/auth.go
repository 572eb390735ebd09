package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountgate/accountgate/internal/models"
	"github.com/accountgate/accountgate/internal/session"
	"github.com/accountgate/accountgate/internal/upstream"
	"github.com/accountgate/accountgate/pkg/logger"
)

// AuthGate guards a route group behind a live profile fetch. On each request
// it resolves the current user (profile cache first, then GET /api/profile
// through the refresh-aware session), hydrates the shared session state and
// exposes the profile to nested handlers. Protected content is never served
// while the fetch is pending or failed.
//
// When the refresh protocol gives up the token store is already cleared; the
// gate owns the policy for that case: a full-page redirect to the landing
// route.
func AuthGate(cache *session.ProfileCache, state *session.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		ts := Tokens(c)
		sess := Upstream(c)

		if cached, err := cache.Get(c.Request.Context(), ts.Access()); err == nil && cached != nil {
			state.Hydrate(*cached)
			c.Set(ctxProfile, *cached)
			c.Next()
			return
		} else if err != nil {
			logger.Warnf("profile cache read: %v", err)
		}

		var pr models.ProfileResponse
		resp, err := sess.GetJSON(c.Request.Context(), "/api/profile", &pr)
		if err != nil {
			if errors.Is(err, upstream.ErrSessionExpired) {
				state.Reset()
				c.Redirect(http.StatusFound, "/")
				c.Abort()
				return
			}
			status := http.StatusBadGateway
			if errors.Is(err, upstream.ErrTimeout) {
				status = http.StatusGatewayTimeout
			}
			abortWithEnvelope(c, status, models.ErrorEnvelope{Message: models.UnknownErrorMessage})
			return
		}
		if !resp.OK() {
			abortWithEnvelope(c, resp.Status, resp.Error())
			return
		}

		state.Hydrate(pr.Data)
		if err := cache.Put(c.Request.Context(), ts.Access(), pr.Data); err != nil {
			logger.Warnf("profile cache write: %v", err)
		}
		c.Set(ctxProfile, pr.Data)
		c.Next()
	}
}

// RoleGate renders nested content only when the hydrated profile's role is
// in the allow-list. No profile or an unlisted role yields the forbidden
// view. Evaluated on every request, so a role change takes effect on the
// next hit.
func RoleGate(allow ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := Profile(c)
		if ok {
			for _, role := range allow {
				if u.Roles == role {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
	}
}

func abortWithEnvelope(c *gin.Context, status int, env models.ErrorEnvelope) {
	b, err := json.Marshal(env)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": models.UnknownErrorMessage})
		return
	}
	c.Data(status, "application/json", b)
	c.Abort()
}

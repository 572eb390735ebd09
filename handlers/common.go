package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountgate/accountgate/internal/models"
	"github.com/accountgate/accountgate/internal/session"
	"github.com/accountgate/accountgate/internal/upstream"
)

// writeUpstream relays an upstream response to the browser unchanged. The
// error envelope contract is shared, so bodies pass through byte for byte.
func writeUpstream(c *gin.Context, resp *upstream.Response) {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	c.Data(resp.Status, ct, resp.Body)
}

// fieldErrors answers a pre-submit validation failure in the upstream's
// array error shape, so the frontend maps fields with one code path.
func fieldErrors(c *gin.Context, fields []models.FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{"message": fields})
}

// failTransport translates transport-level failures. A dead session means
// the refresh protocol already cleared the cookies; the browser goes back
// to the landing page with a full-page redirect.
func failTransport(c *gin.Context, state *session.State, err error) {
	switch {
	case errors.Is(err, upstream.ErrSessionExpired):
		state.Reset()
		c.Redirect(http.StatusFound, "/")
		c.Abort()
	case errors.Is(err, upstream.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"message": "Request timed out"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"message": models.UnknownErrorMessage})
	}
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountgate/accountgate/internal/models"
	"github.com/accountgate/accountgate/internal/session"
	"github.com/accountgate/accountgate/internal/upstream"
	"github.com/accountgate/accountgate/internal/validation"
	"github.com/accountgate/accountgate/pkg/logger"
	"github.com/accountgate/accountgate/pkg/middleware"
)

// ProfileHandler serves the guarded account routes. Every route here sits
// behind AuthGate, so the profile is already hydrated and upstream calls go
// through the refresh-aware session.
type ProfileHandler struct {
	state *session.State
	cache *session.ProfileCache
}

func NewProfileHandler(state *session.State, cache *session.ProfileCache) *ProfileHandler {
	return &ProfileHandler{state: state, cache: cache}
}

// Register mounts the guarded routes. Role gating is applied per route to
// mirror the dashboard route tree: the profile pages are user-only, the
// account listing admin-only.
func (h *ProfileHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/api/profile", h.GetProfile)
	rg.GET("/api/profiles", middleware.RoleGate("admin"), h.GetProfiles)
	rg.PUT("/api/user/password", middleware.RoleGate("user"), h.ChangePassword)
	rg.PATCH("/api/profile", middleware.RoleGate("user"), h.UpdateProfile)
	rg.PUT("/api/profile/profile-picture", middleware.RoleGate("user"), h.UpdateProfilePicture)
}

// GetProfile answers from the gate's hydration; the gate already paid for
// the upstream fetch (or a cache hit) this request.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	u, ok := middleware.Profile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": u})
}

// GetProfiles lists every account (admin view).
func (h *ProfileHandler) GetProfiles(c *gin.Context) {
	resp, err := middleware.Upstream(c).Do(c.Request.Context(), http.MethodGet, "/api/profiles", nil, "", nil)
	if err != nil {
		failTransport(c, h.state, err)
		return
	}
	writeUpstream(c, resp)
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req validation.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		fieldErrors(c, fields)
		return
	}
	body, _ := json.Marshal(req)
	resp, err := middleware.Upstream(c).Do(c.Request.Context(), http.MethodPut, "/api/user/password", body, "application/json", nil)
	if err != nil {
		failTransport(c, h.state, err)
		return
	}
	writeUpstream(c, resp)
}

// UpdateProfile forwards the field changes and patches the in-memory
// session with whatever the upstream confirmed, leaving the authenticated
// flag and unrelated fields alone.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req validation.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		fieldErrors(c, fields)
		return
	}
	body, _ := json.Marshal(req)
	resp, err := middleware.Upstream(c).Do(c.Request.Context(), http.MethodPatch, "/api/profile", body, "application/json", nil)
	if err != nil {
		failTransport(c, h.state, err)
		return
	}
	if resp.OK() {
		h.patchFromResponse(c, resp)
	}
	writeUpstream(c, resp)
}

// UpdateProfilePicture streams the multipart body through unchanged. The
// body is buffered so the refresh protocol can replay it after a 401.
func (h *ProfileHandler) UpdateProfilePicture(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	resp, err := middleware.Upstream(c).Do(c.Request.Context(), http.MethodPut, "/api/profile/profile-picture", body, c.ContentType(), nil)
	if err != nil {
		failTransport(c, h.state, err)
		return
	}
	if resp.OK() {
		h.patchFromResponse(c, resp)
	}
	writeUpstream(c, resp)
}

func (h *ProfileHandler) patchFromResponse(c *gin.Context, resp *upstream.Response) {
	var pr models.ProfileResponse
	if err := json.Unmarshal(resp.Body, &pr); err != nil || pr.Data.IsZero() {
		return
	}
	h.state.Patch(pr.Data)
	// drop the cached copy so the next gate pass sees the new fields
	if at := middleware.Tokens(c).Access(); at != "" {
		if err := h.cache.Invalidate(c.Request.Context(), at); err != nil {
			logger.Warnf("profile cache invalidate: %v", err)
		}
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountgate/accountgate/internal/models"
	"github.com/accountgate/accountgate/internal/session"
	"github.com/accountgate/accountgate/internal/upstream"
	"github.com/accountgate/accountgate/internal/validation"
	"github.com/accountgate/accountgate/pkg/logger"
	"github.com/accountgate/accountgate/pkg/middleware"
)

// AuthHandler owns the unauthenticated account flows: login, registration,
// email verification, the two password-reset steps and logout. Everything
// here talks to the upstream through the public client; the refresh
// protocol must never run for these calls.
type AuthHandler struct {
	pub   *upstream.Client
	state *session.State
	cache *session.ProfileCache
}

func NewAuthHandler(pub *upstream.Client, state *session.State, cache *session.ProfileCache) *AuthHandler {
	return &AuthHandler{pub: pub, state: state, cache: cache}
}

// Register mounts the public routes.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/api/login", h.Login)
	rg.POST("/api/register", h.RegisterUser)
	rg.POST("/api/auth/email-verification", h.EmailVerification)
	rg.PUT("/api/auth/forgot-password", h.ForgotPassword)
	rg.GET("/auth/reset-password/:token", h.ResetPasswordVerify)
	rg.PUT("/api/auth/reset-password", h.ResetPassword)
	rg.POST("/api/logout", h.Logout)
}

// Login exchanges credentials for a token pair, persists the pair plus the
// authenticated marker as cookies, hydrates the session and tells the
// browser where to go next. Tokens never appear in the response body; the
// cookies are the only copy the browser holds.
func (h *AuthHandler) Login(c *gin.Context) {
	var req validation.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		fieldErrors(c, fields)
		return
	}

	body, _ := json.Marshal(req)
	resp, err := h.pub.Do(c.Request.Context(), http.MethodPost, "/api/login", body, "application/json", nil)
	if err != nil {
		failTransport(c, h.state, err)
		return
	}
	if !resp.OK() {
		writeUpstream(c, resp)
		return
	}

	var lr models.LoginResponse
	if err := json.Unmarshal(resp.Body, &lr); err != nil || lr.AccessToken == "" || lr.RefreshToken == "" {
		logger.Errorf("login: unusable upstream response: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": models.UnknownErrorMessage})
		return
	}

	ts := middleware.Tokens(c)
	ts.SetAccessToken(lr.AccessToken)
	ts.SetRefreshToken(lr.RefreshToken)
	ts.SetAuthenticated()
	h.state.Hydrate(lr.Data)
	if err := h.cache.Put(c.Request.Context(), lr.AccessToken, lr.Data); err != nil {
		logger.Warnf("login: profile cache write: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Welcome, " + lr.Data.Username + "!",
		"data":     lr.Data,
		"redirect": "/dashboard",
	})
}

// RegisterUser creates an account upstream; the response message is shown
// as-is and the browser returns to the login form.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req validation.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		fieldErrors(c, fields)
		return
	}
	h.proxyJSON(c, http.MethodPost, "/api/register", req)
}

func (h *AuthHandler) EmailVerification(c *gin.Context) {
	var req validation.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		fieldErrors(c, fields)
		return
	}
	h.proxyJSON(c, http.MethodPost, "/api/auth/email-verification", req)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req validation.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		fieldErrors(c, fields)
		return
	}
	h.proxyJSON(c, http.MethodPut, "/api/auth/forgot-password", req)
}

// ResetPasswordVerify checks a reset token before the new-password form is
// shown. Upstream failures (expired token and the like) pass through so the
// browser surfaces the message and falls back to the landing page.
func (h *AuthHandler) ResetPasswordVerify(c *gin.Context) {
	token := c.Param("token")
	resp, err := h.pub.Do(c.Request.Context(), http.MethodGet, "/auth/reset-password/"+token, nil, "", nil)
	if err != nil {
		failTransport(c, h.state, err)
		return
	}
	writeUpstream(c, resp)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req validation.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		fieldErrors(c, fields)
		return
	}
	h.proxyJSON(c, http.MethodPut, "/api/auth/reset-password", req)
}

// Logout drops the cookies and the in-memory session. The upstream keeps no
// session of its own, so no upstream call is needed.
func (h *AuthHandler) Logout(c *gin.Context) {
	ts := middleware.Tokens(c)
	if at := ts.Access(); at != "" {
		if err := h.cache.Invalidate(c.Request.Context(), at); err != nil {
			logger.Warnf("logout: cache invalidate: %v", err)
		}
	}
	ts.Clear()
	h.state.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "redirect": "/"})
}

func (h *AuthHandler) proxyJSON(c *gin.Context, method, path string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": models.UnknownErrorMessage})
		return
	}
	resp, err := h.pub.Do(c.Request.Context(), method, path, body, "application/json", nil)
	if err != nil {
		failTransport(c, h.state, err)
		return
	}
	writeUpstream(c, resp)
}
